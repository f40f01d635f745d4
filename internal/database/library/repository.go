// Package library provides database operations for the document library:
// registered documents, recency ordering, reading positions and stored
// outlines.
package library

import (
	"time"

	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/entities"
)

// Repository handles all document library database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Register adds a document to the library, or returns the existing entry
// when a document with the same file hash is already registered.
func (r *Repository) Register(doc *entities.Document) (*entities.Document, error) {
	if doc.FileHash != "" {
		var existing entities.Document
		err := r.db.Where("file_hash = ?", doc.FileHash).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	doc.OpenedAt = time.Now()
	if err := r.db.Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByID fetches a document with its outline preloaded.
func (r *Repository) GetByID(id uint) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.Preload("Outline", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListRecent returns library entries most recently opened first.
func (r *Repository) ListRecent(limit int) ([]entities.Document, error) {
	var docs []entities.Document
	query := r.db.Order("opened_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&docs).Error
	return docs, err
}

// TouchOpened bumps a document to the top of the recency order.
func (r *Repository) TouchOpened(id uint) error {
	return r.db.Model(&entities.Document{}).Where("id = ?", id).
		Update("opened_at", time.Now()).Error
}

// SetReadingPosition stores the last-read page for a document. The page
// index must fall inside the document's page range.
func (r *Repository) SetReadingPosition(id uint, pageIndex int) error {
	var doc entities.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return err
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	if doc.PageCount > 0 && pageIndex >= doc.PageCount {
		pageIndex = doc.PageCount - 1
	}
	return r.db.Model(&doc).Updates(map[string]interface{}{
		"last_page_index": pageIndex,
		"opened_at":       time.Now(),
	}).Error
}

// GetReadingPosition returns the last-read page for a document.
func (r *Repository) GetReadingPosition(id uint) (int, error) {
	var doc entities.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return 0, err
	}
	return doc.LastPageIndex, nil
}

// ReplaceOutline swaps a document's stored table of contents.
func (r *Repository) ReplaceOutline(id uint, outline []entities.OutlineEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&entities.OutlineEntry{}).Error; err != nil {
			return err
		}
		for i := range outline {
			outline[i].ID = 0
			outline[i].DocumentID = id
			outline[i].SortOrder = i
		}
		if len(outline) == 0 {
			return nil
		}
		return tx.Create(&outline).Error
	})
}

// GetOutline returns a document's table of contents in display order.
func (r *Repository) GetOutline(id uint) ([]entities.OutlineEntry, error) {
	var outline []entities.OutlineEntry
	err := r.db.Where("document_id = ?", id).Order("sort_order ASC").Find(&outline).Error
	return outline, err
}

// Delete soft-deletes a library entry. Its annotations and outline rows
// are cleaned up by the background cleanup task.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Document{}, id).Error
}
