package storage

import (
	"context"

	"workforce/pkg/domain"
)

// FlagStorage defines persistence for data-quality flags raised during engine
// runs. Flags accumulate per run; old runs keep their flags for audit.
type FlagStorage interface {
	// StoreFlags inserts the given flags.
	StoreFlags(ctx context.Context, flags ...domain.Flag) error
	// Flags returns the flags of one run ordered by creation time.
	Flags(ctx context.Context, runID domain.RunID) ([]domain.Flag, error)
	// LatestRunID returns the run ID of the most recently flagged run, or nil
	// when no flags have ever been stored.
	LatestRunID(ctx context.Context) (*domain.RunID, error)
}
