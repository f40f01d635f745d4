// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pagemark/pagemark/internal/exporters"
)

// ExportSyncScheduler periodically re-exports every library document to
// markdown, catching anything a failed best-effort save left stale.
type ExportSyncScheduler struct {
	exporter *exporters.DocumentMarkdownExporter
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewExportSyncScheduler creates a new scheduler instance.
func NewExportSyncScheduler(exporter *exporters.DocumentMarkdownExporter, schedule string) *ExportSyncScheduler {
	return &ExportSyncScheduler{
		exporter: exporter,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ExportSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export sync: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Export sync scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *ExportSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Export sync scheduler: stopped")
}

// RunNow triggers an immediate sync.
func (s *ExportSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active.
func (s *ExportSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync will occur.
func (s *ExportSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ExportSyncScheduler) runSync() {
	log.Printf("Export sync: starting full-library export to %s", s.exporter.OutputDir)
	startTime := time.Now()

	result, err := s.exporter.ExportAll()
	if err != nil {
		log.Printf("Export sync: failed: %v", err)
		return
	}

	log.Printf("Export sync: exported %d documents (%d failed) in %v",
		result.DocumentsProcessed, result.DocumentsFailed, time.Since(startTime).Round(time.Millisecond))
}
