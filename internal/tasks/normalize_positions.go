package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mikestefanello/backlite"
)

// NormalizePositionsQueue is the queue name of NormalizePositionsTask.
const NormalizePositionsQueue = "normalize_category_positions"

// PositionNormalizer renumbers a user's categories to 1..N.
type PositionNormalizer interface {
	NormalizePositions(ctx context.Context, owner uint) (int, error)
}

// NormalizePositionsTask compacts the category positions of one user.
type NormalizePositionsTask struct {
	UserID uint `json:"user_id"`
}

var (
	queueSettingsMu sync.RWMutex
	queueSettings   = DefaultConfig()
)

// Config returns the queue configuration for normalisation tasks.
func (t NormalizePositionsTask) Config() backlite.QueueConfig {
	queueSettingsMu.RLock()
	cfg := queueSettings
	queueSettingsMu.RUnlock()

	return backlite.QueueConfig{
		Name:        NormalizePositionsQueue,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NormalizePositionsProcessor creates a processor function for NormalizePositionsTask.
func NormalizePositionsProcessor(normalizer PositionNormalizer) backlite.QueueProcessor[NormalizePositionsTask] {
	return func(ctx context.Context, task NormalizePositionsTask) error {
		if normalizer == nil {
			return fmt.Errorf("position normalizer not configured")
		}

		moved, err := normalizer.NormalizePositions(ctx, task.UserID)
		if err != nil {
			return fmt.Errorf("normalize positions for user %d: %w", task.UserID, err)
		}

		log.Printf("[TASK] Normalized category positions for user %d (%d moved)", task.UserID, moved)
		return nil
	}
}

// NewNormalizePositionsQueue creates a backlite queue for normalisation
// tasks. cfg supplies attempts, backoff, timeout and retention.
func NewNormalizePositionsQueue(normalizer PositionNormalizer, cfg Config) backlite.Queue {
	queueSettingsMu.Lock()
	queueSettings = cfg
	queueSettingsMu.Unlock()

	return backlite.NewQueue(NormalizePositionsProcessor(normalizer))
}
