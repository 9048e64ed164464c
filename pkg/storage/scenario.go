package storage

import (
	"context"

	"workforce/pkg/domain"
)

// ScenarioStorage defines persistence for the scenario catalog. Scenarios are
// keyed by their partner employment rate; constants and the default marker
// follow the latest sweep's configuration.
type ScenarioStorage interface {
	// UpsertScenarios inserts scenarios or updates the retention constants and
	// default marker of existing ones with the same partner employment rate.
	// The returned rows carry the storage-assigned IDs.
	UpsertScenarios(ctx context.Context, scenarios ...domain.ScenarioDefinition) ([]domain.ScenarioDefinition, error)
	// Scenarios returns the full catalog ordered by partner employment rate.
	Scenarios(ctx context.Context) ([]domain.ScenarioDefinition, error)
	// ScenarioByID returns one scenario, or nil when it does not exist.
	ScenarioByID(ctx context.Context, id int64) (*domain.ScenarioDefinition, error)
}
