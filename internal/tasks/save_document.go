package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/pagemark/pagemark/internal/exporters"
)

// SaveDocumentTask exports one document's highlights to markdown. It is
// enqueued after every annotation mutation; saves are best-effort and the
// caller never waits on the result.
type SaveDocumentTask struct {
	DocumentID uint `json:"document_id"`
}

// Config returns the queue configuration for document save tasks.
func (t SaveDocumentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "save_document",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SaveDocumentProcessor creates a processor function for SaveDocumentTask.
func SaveDocumentProcessor(exporter *exporters.DocumentMarkdownExporter) backlite.QueueProcessor[SaveDocumentTask] {
	return func(ctx context.Context, task SaveDocumentTask) error {
		if exporter == nil {
			return fmt.Errorf("exporter not configured")
		}

		path, err := exporter.ExportDocument(task.DocumentID)
		if err != nil {
			return fmt.Errorf("save document %d: %w", task.DocumentID, err)
		}

		log.Printf("[TASK] Saved document %d highlights to %s", task.DocumentID, path)
		return nil
	}
}

// NewSaveDocumentQueue creates a backlite queue for document save tasks.
func NewSaveDocumentQueue(exporter *exporters.DocumentMarkdownExporter) backlite.Queue {
	return backlite.NewQueue(SaveDocumentProcessor(exporter))
}
