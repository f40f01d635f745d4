package tasks

import "time"

// Config holds task queue configuration.
//
// Workers should stay at 1 in production: the save_document queue relies on
// a single worker so that at most one export is in flight at a time and
// in-memory edits are never observed mid-write.
type Config struct {
	Workers           int
	MaxRetries        int
	RetryDelay        time.Duration
	TaskTimeout       time.Duration
	ReleaseAfter      time.Duration
	CleanupInterval   time.Duration
	RetentionDuration time.Duration
}

// DefaultConfig returns the stock task queue configuration.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        3,
		RetryDelay:        10 * time.Second,
		TaskTimeout:       time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
