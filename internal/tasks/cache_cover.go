package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CacheCoverTask downloads one record's cover into the local cache.
type CacheCoverTask struct {
	RecordID uint   `json:"record_id"`
	CoverURL string `json:"cover_url"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CoverFetcher is the part of the cover cache the task needs.
type CoverFetcher interface {
	Prefetch(ctx context.Context, recordID uint, coverURL string) error
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
func CacheCoverProcessor(fetcher CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover cache not configured")
		}

		if err := fetcher.Prefetch(ctx, task.RecordID, task.CoverURL); err != nil {
			return fmt.Errorf("cache cover for record %d: %w", task.RecordID, err)
		}

		log.Printf("[TASK] Cached cover for record %d", task.RecordID)
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching tasks.
func NewCacheCoverQueue(fetcher CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(fetcher))
}
