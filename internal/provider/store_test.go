package provider

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
	"github.com/pagemark/pagemark/internal/reader"
)

func setupTestSource(t *testing.T, save SaveFunc) (*Source, *library.Repository, *annotations.Repository, func()) {
	t.Helper()
	dbPath := "./test_provider_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Document{}, &entities.Annotation{}, &entities.OutlineEntry{})
	require.NoError(t, err)

	libraryRepo := library.NewRepository(db)
	annotationsRepo := annotations.NewRepository(db)
	source := NewSource(libraryRepo, annotationsRepo, save)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return source, libraryRepo, annotationsRepo, cleanup
}

func TestSource_ProviderFor(t *testing.T) {
	source, libraryRepo, _, cleanup := setupTestSource(t, nil)
	defer cleanup()

	doc, err := libraryRepo.Register(&entities.Document{Title: "Doc", PageCount: 24})
	require.NoError(t, err)

	provider, err := source.ProviderFor(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, provider.PageCount())

	_, err = source.ProviderFor(9999)
	assert.Error(t, err)
}

func TestStore_HighlightsOnPage(t *testing.T) {
	source, libraryRepo, annotationsRepo, cleanup := setupTestSource(t, nil)
	defer cleanup()

	doc, err := libraryRepo.Register(&entities.Document{Title: "Doc", PageCount: 10})
	require.NoError(t, err)

	require.NoError(t, annotationsRepo.Create(&entities.Annotation{
		DocumentID: doc.ID, PageIndex: 3,
		Kind: entities.AnnotationKindHighlight, Text: "first on page",
	}))
	require.NoError(t, annotationsRepo.Create(&entities.Annotation{
		DocumentID: doc.ID, PageIndex: 3,
		Kind: entities.AnnotationKindHighlight, Text: "second on page",
	}))
	// A note on the same page must stay out of the grouper's view
	require.NoError(t, annotationsRepo.Create(&entities.Annotation{
		DocumentID: doc.ID, PageIndex: 3,
		Kind: entities.AnnotationKindNote, Contents: "reminder",
	}))

	provider, err := source.ProviderFor(doc.ID)
	require.NoError(t, err)

	anns := provider.HighlightsOnPage(3)
	require.Len(t, anns, 2)
	assert.Equal(t, "first on page", anns[0].Text)
	assert.Equal(t, "second on page", anns[1].Text)

	assert.Empty(t, provider.HighlightsOnPage(7))
}

func TestStore_RemoveAnnotation(t *testing.T) {
	source, libraryRepo, annotationsRepo, cleanup := setupTestSource(t, nil)
	defer cleanup()

	doc, err := libraryRepo.Register(&entities.Document{Title: "Doc", PageCount: 10})
	require.NoError(t, err)

	rec := &entities.Annotation{
		DocumentID: doc.ID, PageIndex: 2,
		Kind: entities.AnnotationKindHighlight, Text: "to remove",
	}
	require.NoError(t, annotationsRepo.Create(rec))

	provider, err := source.ProviderFor(doc.ID)
	require.NoError(t, err)

	target := reader.Annotation{ID: rec.ID, PageIndex: 2}
	assert.True(t, provider.RemoveAnnotation(2, target))
	assert.False(t, provider.RemoveAnnotation(2, target))
	assert.Empty(t, provider.HighlightsOnPage(2))
}

func TestStore_MarkDirtyAndSave(t *testing.T) {
	var savedIDs []uint
	source, libraryRepo, _, cleanup := setupTestSource(t, func(documentID uint) {
		savedIDs = append(savedIDs, documentID)
	})
	defer cleanup()

	doc, err := libraryRepo.Register(&entities.Document{Title: "Doc", PageCount: 10})
	require.NoError(t, err)

	provider, err := source.ProviderFor(doc.ID)
	require.NoError(t, err)

	provider.MarkDirtyAndSave()
	provider.MarkDirtyAndSave()

	assert.Equal(t, []uint{doc.ID, doc.ID}, savedIDs)
}

func TestStore_GroupingEndToEnd(t *testing.T) {
	source, libraryRepo, annotationsRepo, cleanup := setupTestSource(t, nil)
	defer cleanup()

	doc, err := libraryRepo.Register(&entities.Document{Title: "Doc", PageCount: 10})
	require.NoError(t, err)

	// A highlight spanning the page 4/5 spread, stored page by page
	require.NoError(t, annotationsRepo.Create(&entities.Annotation{
		DocumentID: doc.ID, PageIndex: 4,
		Kind: entities.AnnotationKindHighlight, Text: "spanning text",
	}))
	require.NoError(t, annotationsRepo.Create(&entities.Annotation{
		DocumentID: doc.ID, PageIndex: 5,
		Kind: entities.AnnotationKindHighlight, Text: "spanning text",
	}))

	provider, err := source.ProviderFor(doc.ID)
	require.NoError(t, err)

	groups := reader.ComputeGroups(provider)
	require.Len(t, groups, 1)
	assert.Equal(t, "spanning text", groups[0].Text)
	assert.Equal(t, "Pages 3–3", reader.PageLabel(groups[0]))
	assert.Len(t, groups[0].Members, 2)
}
