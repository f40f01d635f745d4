package library

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
	dbPath := "./test_library_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Document{}, &entities.OutlineEntry{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_Register(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := repo.Register(&entities.Document{
		Title:     "Structure and Interpretation",
		Author:    "Abelson",
		PageCount: 657,
		FileHash:  "abc123",
	})
	require.NoError(t, err)
	assert.NotZero(t, doc.ID)
	assert.False(t, doc.OpenedAt.IsZero())
}

func TestRepository_Register_DedupByHash(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.Register(&entities.Document{Title: "Original", PageCount: 10, FileHash: "samehash"})
	require.NoError(t, err)

	second, err := repo.Register(&entities.Document{Title: "Duplicate", PageCount: 10, FileHash: "samehash"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Original", second.Title)
}

func TestRepository_Register_NoHashAlwaysCreates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.Register(&entities.Document{Title: "One", PageCount: 10})
	require.NoError(t, err)
	second, err := repo.Register(&entities.Document{Title: "Two", PageCount: 10})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestRepository_ListRecent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	older, err := repo.Register(&entities.Document{Title: "Older", PageCount: 10})
	require.NoError(t, err)
	newer, err := repo.Register(&entities.Document{Title: "Newer", PageCount: 10})
	require.NoError(t, err)

	require.NoError(t, repo.TouchOpened(newer.ID))

	docs, err := repo.ListRecent(0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, newer.ID, docs[0].ID)
	assert.Equal(t, older.ID, docs[1].ID)

	// TouchOpened on the other document flips the order
	require.NoError(t, repo.TouchOpened(older.ID))
	docs, err = repo.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, older.ID, docs[0].ID)
}

func TestRepository_ReadingPosition(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := repo.Register(&entities.Document{Title: "Doc", PageCount: 100})
	require.NoError(t, err)

	t.Run("defaults to first page", func(t *testing.T) {
		pos, err := repo.GetReadingPosition(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, pos)
	})

	t.Run("round-trips a valid position", func(t *testing.T) {
		require.NoError(t, repo.SetReadingPosition(doc.ID, 42))

		pos, err := repo.GetReadingPosition(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 42, pos)
	})

	t.Run("clamps positions outside the page range", func(t *testing.T) {
		require.NoError(t, repo.SetReadingPosition(doc.ID, 500))
		pos, err := repo.GetReadingPosition(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 99, pos)

		require.NoError(t, repo.SetReadingPosition(doc.ID, -3))
		pos, err = repo.GetReadingPosition(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, pos)
	})

	t.Run("errors for an unknown document", func(t *testing.T) {
		err := repo.SetReadingPosition(9999, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_Outline(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := repo.Register(&entities.Document{Title: "Doc", PageCount: 100})
	require.NoError(t, err)

	entries := []entities.OutlineEntry{
		{Title: "Chapter 1", PageIndex: 0, Level: 0},
		{Title: "Section 1.1", PageIndex: 4, Level: 1},
		{Title: "Chapter 2", PageIndex: 20, Level: 0},
	}
	require.NoError(t, repo.ReplaceOutline(doc.ID, entries))

	outline, err := repo.GetOutline(doc.ID)
	require.NoError(t, err)
	require.Len(t, outline, 3)
	assert.Equal(t, "Chapter 1", outline[0].Title)
	assert.Equal(t, 1, outline[1].SortOrder)
	assert.Equal(t, "Chapter 2", outline[2].Title)

	// Replacing swaps the whole outline, it never appends
	require.NoError(t, repo.ReplaceOutline(doc.ID, []entities.OutlineEntry{
		{Title: "Only chapter", PageIndex: 0, Level: 0},
	}))
	outline, err = repo.GetOutline(doc.ID)
	require.NoError(t, err)
	require.Len(t, outline, 1)
	assert.Equal(t, "Only chapter", outline[0].Title)

	// GetByID preloads the outline in order
	loaded, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Outline, 1)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := repo.Register(&entities.Document{Title: "Doomed", PageCount: 10})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(doc.ID))

	_, err = repo.GetByID(doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	docs, err := repo.ListRecent(0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
