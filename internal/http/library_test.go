package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/entities"
)

func TestLibraryController_RegisterDocument(t *testing.T) {
	t.Run("registers with outline", func(t *testing.T) {
		env, cleanup := setupTestRouter(t)
		defer cleanup()

		w := env.request(t, "POST", "/api/documents", map[string]any{
			"title":      "The Go Programming Language",
			"author":     "Donovan",
			"page_count": 380,
			"outline": []map[string]any{
				{"title": "Tutorial", "page_index": 0, "level": 0},
				{"title": "Program Structure", "page_index": 27, "level": 0},
			},
		})

		require.Equal(t, http.StatusCreated, w.Code)
		response := decodeBody(t, w)
		assert.NotZero(t, response["id"])

		docs, err := env.library.ListRecent(0)
		require.NoError(t, err)
		require.Len(t, docs, 1)

		outline, err := env.library.GetOutline(docs[0].ID)
		require.NoError(t, err)
		assert.Len(t, outline, 2)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		env, cleanup := setupTestRouter(t)
		defer cleanup()

		w := env.request(t, "POST", "/api/documents", map[string]any{
			"page_count": 10,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects zero page count", func(t *testing.T) {
		env, cleanup := setupTestRouter(t)
		defer cleanup()

		w := env.request(t, "POST", "/api/documents", map[string]any{
			"title":      "Empty",
			"page_count": 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("same file hash returns the existing entry", func(t *testing.T) {
		env, cleanup := setupTestRouter(t)
		defer cleanup()

		first := env.request(t, "POST", "/api/documents", map[string]any{
			"title": "Original", "page_count": 10, "file_hash": "deadbeef",
		})
		require.Equal(t, http.StatusCreated, first.Code)

		second := env.request(t, "POST", "/api/documents", map[string]any{
			"title": "Duplicate", "page_count": 10, "file_hash": "deadbeef",
		})
		require.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, decodeBody(t, first)["id"], decodeBody(t, second)["id"])

		docs, err := env.library.ListRecent(0)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

func TestLibraryController_ListDocuments(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	w := env.request(t, "GET", "/api/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])

	registerTestDocument(t, env, 10)
	registerTestDocument(t, env, 20)

	w = env.request(t, "GET", "/api/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])
}

func TestLibraryController_GetDocument(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()
	id := registerTestDocument(t, env, 10)

	require.NoError(t, env.annotations.Create(&entities.Annotation{
		DocumentID: id, PageIndex: 0,
		Kind: entities.AnnotationKindHighlight, Text: "counted",
	}))

	w := env.request(t, "GET", "/api/documents/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(1), response["annotation_count"])
	doc := response["document"].(map[string]any)
	assert.Equal(t, "Test Document", doc["title"])

	w = env.request(t, "GET", "/api/documents/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, "GET", "/api/documents/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLibraryController_DeleteDocument(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()
	id := registerTestDocument(t, env, 10)

	w := env.request(t, "DELETE", "/api/documents/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "GET", "/api/documents/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, "DELETE", "/api/documents/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
