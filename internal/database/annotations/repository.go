// Package annotations provides database operations for page-scoped
// highlight and note annotations.
package annotations

import (
	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/entities"
)

// Repository handles all annotation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new annotations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForDocument returns every annotation of a document ordered by page,
// then by in-page position.
func (r *Repository) ListForDocument(documentID uint) ([]entities.Annotation, error) {
	var anns []entities.Annotation
	err := r.db.Where("document_id = ?", documentID).
		Order("page_index ASC, position ASC").Find(&anns).Error
	return anns, err
}

// ListForPage returns a single page's annotations in in-page order,
// optionally restricted to one kind.
func (r *Repository) ListForPage(documentID uint, pageIndex int, kind entities.AnnotationKind) ([]entities.Annotation, error) {
	var anns []entities.Annotation
	query := r.db.Where("document_id = ? AND page_index = ?", documentID, pageIndex)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Order("position ASC").Find(&anns).Error
	return anns, err
}

// GetByID fetches one annotation.
func (r *Repository) GetByID(id uint) (*entities.Annotation, error) {
	var ann entities.Annotation
	err := r.db.First(&ann, id).Error
	if err != nil {
		return nil, err
	}
	return &ann, nil
}

// Create appends an annotation at the end of its page's in-page order.
func (r *Repository) Create(ann *entities.Annotation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		err := tx.Model(&entities.Annotation{}).
			Where("document_id = ? AND page_index = ?", ann.DocumentID, ann.PageIndex).
			Select("MAX(position)").Scan(&maxPos).Error
		if err != nil {
			return err
		}
		if maxPos != nil {
			ann.Position = *maxPos + 1
		} else {
			ann.Position = 0
		}
		return tx.Create(ann).Error
	})
}

// SetNote replaces the user note attached to an annotation.
func (r *Repository) SetNote(id uint, note string) error {
	result := r.db.Model(&entities.Annotation{}).Where("id = ?", id).Update("note", note)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes an annotation and reports whether it was still present.
// Removing an already-absent annotation is not an error.
func (r *Repository) Remove(id uint) (bool, error) {
	result := r.db.Delete(&entities.Annotation{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveForDocument deletes every annotation belonging to a document.
func (r *Repository) RemoveForDocument(documentID uint) (int64, error) {
	result := r.db.Where("document_id = ?", documentID).Delete(&entities.Annotation{})
	return result.RowsAffected, result.Error
}

// CountForDocument counts a document's annotations.
func (r *Repository) CountForDocument(documentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Annotation{}).
		Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}
