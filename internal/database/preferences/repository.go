// Package preferences provides database operations for reader preferences.
// It replaces the original application's process-wide preference singleton
// with an explicitly constructed, injectable store.
//
// # Usage
//
//	repo := preferences.NewRepository(db)
//	mode, err := repo.ViewMode()
package preferences

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/entities"
)

// Well-known preference keys.
const (
	KeyViewMode        = "view_mode"
	KeyLastOpenedDoc   = "last_opened_document"
	DefaultViewMode    = "two_page"
	ViewModeSinglePage = "single_page"
)

// Repository handles all preference database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new preferences repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a preference by key.
func (r *Repository) Get(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Set creates or updates a preference.
func (r *Repository) Set(key, value string) error {
	var setting entities.Setting
	result := r.db.Where("key = ?", key).First(&setting)

	if result.Error == gorm.ErrRecordNotFound {
		setting = entities.Setting{
			Key:   key,
			Value: value,
		}
		return r.db.Create(&setting).Error
	} else if result.Error != nil {
		return result.Error
	}

	setting.Value = value
	return r.db.Save(&setting).Error
}

// Delete removes a preference by key.
func (r *Repository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

// ViewMode returns the configured page layout, defaulting to the two-page
// spread view.
func (r *Repository) ViewMode() (string, error) {
	setting, err := r.Get(KeyViewMode)
	if err == gorm.ErrRecordNotFound {
		return DefaultViewMode, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetLastOpenedDocument remembers which document to reopen on launch.
func (r *Repository) SetLastOpenedDocument(documentID uint) error {
	return r.Set(KeyLastOpenedDoc, strconv.FormatUint(uint64(documentID), 10))
}

// LastOpenedDocument returns the remembered document ID, or 0 when none is
// stored.
func (r *Repository) LastOpenedDocument() (uint, error) {
	setting, err := r.Get(KeyLastOpenedDoc)
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(setting.Value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
