package postgres

import (
	"context"
	"fmt"

	"workforce/pkg/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const runFlagsTable = "run_flags"

func (p *PgSQL) StoreFlags(ctx context.Context, flags ...domain.Flag) error {
	if len(flags) == 0 {
		return nil
	}

	rows := make([]PgFlag, len(flags))
	for i := range rows {
		rows[i].FromDomain(flags[i])
	}

	if _, err := p.Builder.Insert(runFlagsTable).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store flags into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) Flags(ctx context.Context, runID domain.RunID) ([]domain.Flag, error) {
	var rows []PgFlag
	if err := p.Builder.From(runFlagsTable).
		Where(goqu.I("run_id").Eq(runID)).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch flags from pg: %w", err)
	}

	out := make([]domain.Flag, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// LatestRunID returns the run ID of the most recently flagged run, or nil when
// the flags table is empty.
func (p *PgSQL) LatestRunID(ctx context.Context) (*domain.RunID, error) {
	var runID uuid.UUID
	found, err := p.Builder.From(runFlagsTable).
		Select(goqu.I("run_id")).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanValContext(ctx, &runID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch latest run id from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &runID, nil
}
