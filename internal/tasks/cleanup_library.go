package tasks

import (
	"context"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/pagemark/pagemark/internal/database"
	"github.com/pagemark/pagemark/internal/entities"
)

// CleanupLibraryTask prunes annotations and outline rows that belong to
// soft-deleted documents. Document deletion only removes the library entry;
// this task reclaims the rest.
type CleanupLibraryTask struct{}

// Config returns the queue configuration for library cleanup tasks.
func (t CleanupLibraryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_library",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupLibraryProcessor creates a processor function for
// CleanupLibraryTask.
func CleanupLibraryProcessor(db *database.Database) backlite.QueueProcessor[CleanupLibraryTask] {
	return func(ctx context.Context, task CleanupLibraryTask) error {
		var deletedIDs []uint
		err := db.DB.Unscoped().Model(&entities.Document{}).
			Where("deleted_at IS NOT NULL").Pluck("id", &deletedIDs).Error
		if err != nil {
			return err
		}

		if len(deletedIDs) == 0 {
			log.Printf("[TASK] Library cleanup: nothing to prune")
			return nil
		}

		annResult := db.DB.Where("document_id IN ?", deletedIDs).Delete(&entities.Annotation{})
		if annResult.Error != nil {
			return annResult.Error
		}
		outlineResult := db.DB.Where("document_id IN ?", deletedIDs).Delete(&entities.OutlineEntry{})
		if outlineResult.Error != nil {
			return outlineResult.Error
		}

		log.Printf("[TASK] Library cleanup: pruned %d annotations and %d outline entries across %d deleted documents",
			annResult.RowsAffected, outlineResult.RowsAffected, len(deletedIDs))
		return nil
	}
}

// NewCleanupLibraryQueue creates a backlite queue for library cleanup
// tasks.
func NewCleanupLibraryQueue(db *database.Database) backlite.Queue {
	return backlite.NewQueue(CleanupLibraryProcessor(db))
}
