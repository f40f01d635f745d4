package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/entities"
)

func TestDatabase(t *testing.T) {
	dbPath := "./test.db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	t.Run("migrates all tables", func(t *testing.T) {
		for _, table := range []string{"documents", "annotations", "outline_entries", "settings"} {
			assert.True(t, db.DB.Migrator().HasTable(table), "expected table %s", table)
		}
	})

	t.Run("stores a document with its annotations", func(t *testing.T) {
		doc := &entities.Document{
			Title:     "Test Document",
			Author:    "Test Author",
			PageCount: 120,
			Annotations: []entities.Annotation{
				{
					PageIndex: 12,
					Kind:      entities.AnnotationKindHighlight,
					Text:      "a highlight worth keeping",
				},
			},
		}

		require.NoError(t, db.DB.Create(doc).Error)
		assert.NotZero(t, doc.ID)
		assert.NotZero(t, doc.Annotations[0].ID)
		assert.Equal(t, doc.ID, doc.Annotations[0].DocumentID)
	})

	t.Run("soft deletes documents", func(t *testing.T) {
		doc := &entities.Document{Title: "Doomed", PageCount: 5}
		require.NoError(t, db.DB.Create(doc).Error)
		require.NoError(t, db.DB.Delete(doc).Error)

		var found entities.Document
		err := db.DB.First(&found, doc.ID).Error
		assert.Error(t, err)

		// Still visible through an unscoped query
		err = db.DB.Unscoped().First(&found, doc.ID).Error
		assert.NoError(t, err)
	})
}
