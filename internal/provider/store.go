// Package provider implements the reader's annotation provider contract on
// top of the annotation store.
package provider

import (
	"fmt"
	"log"

	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
	"github.com/pagemark/pagemark/internal/reader"
)

// SaveFunc requests a best-effort asynchronous save for a document.
type SaveFunc func(documentID uint)

// Source resolves store-backed providers per document and satisfies
// reader.ProviderSource.
type Source struct {
	library     *library.Repository
	annotations *annotations.Repository
	save        SaveFunc
}

func NewSource(lib *library.Repository, anns *annotations.Repository, save SaveFunc) *Source {
	return &Source{
		library:     lib,
		annotations: anns,
		save:        save,
	}
}

// ProviderFor returns a provider bound to one document's current state.
func (s *Source) ProviderFor(documentID uint) (reader.Provider, error) {
	doc, err := s.library.GetByID(documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	return &Store{
		documentID:  doc.ID,
		pageCount:   doc.PageCount,
		annotations: s.annotations,
		save:        s.save,
	}, nil
}

// Store serves one document's highlight annotations from the database.
// Reads never mutate store state, so concurrent reads are safe.
type Store struct {
	documentID  uint
	pageCount   int
	annotations *annotations.Repository
	save        SaveFunc
}

func (s *Store) PageCount() int {
	return s.pageCount
}

// HighlightsOnPage returns the page's highlight-kind annotations in stored
// in-page order. Note-kind annotations never reach the grouper.
func (s *Store) HighlightsOnPage(pageIndex int) []reader.Annotation {
	records, err := s.annotations.ListForPage(s.documentID, pageIndex, entities.AnnotationKindHighlight)
	if err != nil {
		log.Printf("Failed to list annotations for document %d page %d: %v", s.documentID, pageIndex, err)
		return nil
	}

	anns := make([]reader.Annotation, 0, len(records))
	for _, rec := range records {
		anns = append(anns, toReaderAnnotation(rec))
	}
	return anns
}

func (s *Store) ResolvedText(a reader.Annotation) string {
	return reader.ResolveText(a)
}

// RemoveAnnotation deletes the annotation, reporting false when it was
// already gone.
func (s *Store) RemoveAnnotation(pageIndex int, a reader.Annotation) bool {
	found, err := s.annotations.Remove(a.ID)
	if err != nil {
		log.Printf("Failed to remove annotation %d from document %d: %v", a.ID, s.documentID, err)
		return false
	}
	return found
}

// MarkDirtyAndSave requests an asynchronous best-effort save. No result is
// reported back; failures surface in the save worker's log.
func (s *Store) MarkDirtyAndSave() {
	if s.save != nil {
		s.save(s.documentID)
	}
}

func toReaderAnnotation(rec entities.Annotation) reader.Annotation {
	return reader.Annotation{
		ID:        rec.ID,
		PageIndex: rec.PageIndex,
		Text:      rec.Text,
		Contents:  rec.Contents,
		Color:     rec.Color,
		Bounds: reader.Rect{
			X: rec.BoundsX,
			Y: rec.BoundsY,
			W: rec.BoundsW,
			H: rec.BoundsH,
		},
	}
}
