package postgres

import (
	"context"
	"fmt"
	"leadscout/pkg/domain"
	"leadscout/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	runsTable = "discovery_runs"
)

func (p *PgSQL) StoreRun(ctx context.Context, run domain.DiscoveryRun) (*domain.DiscoveryRun, error) {
	var pgRun PgRun
	pgRun.FromDomain(run)

	var row PgRun
	found, err := p.Builder.Insert(runsTable).
		Rows(pgRun).
		Returning(&PgRun{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store run into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store run into pg: no row returned")
	}

	return row.ToDomain(), nil
}

// RunByID returns a discovery run by its ID for the given user.
func (p *PgSQL) RunByID(ctx context.Context, userID domain.UserID, id domain.RunID) (*domain.DiscoveryRun, error) {
	var row PgRun
	found, err := p.Builder.From(runsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch run by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// UpdateRunByID updates a single run with the provided fields. Counters are
// only updated when non-nil and updated_at is set automatically.
func (p *PgSQL) UpdateRunByID(ctx context.Context,
	id domain.RunID,
	updates storage.RunUpdates) (*domain.DiscoveryRun, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"status":     string(updates.Status),
	}
	if updates.CandidatesSeen != nil {
		rec["candidates_seen"] = *updates.CandidatesSeen
	}
	if updates.LeadsCreated != nil {
		rec["leads_created"] = *updates.LeadsCreated
	}
	if updates.DuplicatesSkipped != nil {
		rec["duplicates_skipped"] = *updates.DuplicatesSkipped
	}
	if updates.NoiseFiltered != nil {
		rec["noise_filtered"] = *updates.NoiseFiltered
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			// set to NULL when empty string provided
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	var row PgRun
	found, err := p.Builder.Update(runsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgRun{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update run in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
