// Package history keeps per-generation summaries and champion genomes of
// training runs.
package history

import (
	"context"

	"github.com/pthm-cable/flappy/telemetry"
)

// Store persists run history. Records are keyed by run ID; saving the same
// generation twice replaces it.
type Store interface {
	Init(ctx context.Context) error
	SaveGeneration(ctx context.Context, runID string, stats telemetry.GenerationStats) error
	Generations(ctx context.Context, runID string) ([]telemetry.GenerationStats, bool, error)
	SaveChampion(ctx context.Context, runID string, champion telemetry.HallEntry) error
	Champion(ctx context.Context, runID string) (telemetry.HallEntry, bool, error)
	Close() error
}
