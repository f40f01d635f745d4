package annotations

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pagemark/pagemark/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_annotations_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Annotation{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func highlight(documentID uint, page int, text string) *entities.Annotation {
	return &entities.Annotation{
		DocumentID: documentID,
		PageIndex:  page,
		Kind:       entities.AnnotationKindHighlight,
		Text:       text,
	}
}

func TestRepository_Create_AssignsInPagePositions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := highlight(1, 3, "first")
	second := highlight(1, 3, "second")
	otherPage := highlight(1, 4, "other page")

	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(otherPage))

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, 0, otherPage.Position)
}

func TestRepository_ListForDocument_Ordering(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(highlight(1, 5, "page five")))
	require.NoError(t, repo.Create(highlight(1, 2, "page two, first")))
	require.NoError(t, repo.Create(highlight(1, 2, "page two, second")))
	require.NoError(t, repo.Create(highlight(2, 0, "other document")))

	anns, err := repo.ListForDocument(1)
	require.NoError(t, err)
	require.Len(t, anns, 3)
	assert.Equal(t, "page two, first", anns[0].Text)
	assert.Equal(t, "page two, second", anns[1].Text)
	assert.Equal(t, "page five", anns[2].Text)
}

func TestRepository_ListForPage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(highlight(1, 3, "highlighted")))
	note := &entities.Annotation{
		DocumentID: 1,
		PageIndex:  3,
		Kind:       entities.AnnotationKindNote,
		Contents:   "a note",
	}
	require.NoError(t, repo.Create(note))

	t.Run("all kinds", func(t *testing.T) {
		anns, err := repo.ListForPage(1, 3, "")
		require.NoError(t, err)
		assert.Len(t, anns, 2)
	})

	t.Run("highlights only", func(t *testing.T) {
		anns, err := repo.ListForPage(1, 3, entities.AnnotationKindHighlight)
		require.NoError(t, err)
		require.Len(t, anns, 1)
		assert.Equal(t, "highlighted", anns[0].Text)
	})

	t.Run("empty page", func(t *testing.T) {
		anns, err := repo.ListForPage(1, 9, "")
		require.NoError(t, err)
		assert.Empty(t, anns)
	})
}

func TestRepository_SetNote(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ann := highlight(1, 0, "text")
	require.NoError(t, repo.Create(ann))

	require.NoError(t, repo.SetNote(ann.ID, "my thought"))

	loaded, err := repo.GetByID(ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "my thought", loaded.Note)

	err = repo.SetNote(9999, "nobody home")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Remove_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ann := highlight(1, 0, "text")
	require.NoError(t, repo.Create(ann))

	found, err := repo.Remove(ann.ID)
	require.NoError(t, err)
	assert.True(t, found)

	// Second removal finds nothing but does not fail
	found, err = repo.Remove(ann.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepository_RemoveForDocument(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(highlight(1, 0, "a")))
	require.NoError(t, repo.Create(highlight(1, 1, "b")))
	require.NoError(t, repo.Create(highlight(2, 0, "kept")))

	removed, err := repo.RemoveForDocument(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.CountForDocument(1)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountForDocument(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
