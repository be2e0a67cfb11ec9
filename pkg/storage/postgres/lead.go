package postgres

import (
	"context"
	"fmt"
	"leadscout/pkg/domain"
	"leadscout/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	leadsTable = "leads"
)

// StoreLead inserts a lead, relying on the partial unique index over
// (owner_user_id, company_key) for deduplication. A conflicting insert is
// skipped (first write wins) and nil is returned.
func (p *PgSQL) StoreLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error) {
	var pgLead PgLead
	if err := pgLead.FromDomain(lead); err != nil {
		return nil, err
	}

	var row PgLead
	found, err := p.Builder.Insert(leadsTable).
		Rows(pgLead).
		OnConflict(goqu.DoNothing()).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store lead into pg: %w", err)
	}
	if !found {
		// duplicate of an existing lead for this owner
		return nil, nil
	}

	return row.ToDomain()
}

// LeadByID returns a lead by its ID, excluding soft-deleted rows.
func (p *PgSQL) LeadByID(ctx context.Context, userID domain.UserID, id domain.LeadID) (*domain.Lead, error) {
	var row PgLead
	found, err := p.Builder.From(leadsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch lead by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UserLeads returns a page of leads for a user filtered by optional stage and
// cursor, ordered by created_at DESC, id DESC. Returns the next cursor when
// more results are available.
func (p *PgSQL) UserLeads(ctx context.Context,
	userID domain.UserID,
	stage domain.PipelineStage,
	cursor time.Time,
	limit uint) (storage.UserLeads, error) {
	w := []goqu.Expression{
		goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	}
	if stage != "" {
		w = append(w, goqu.I("pipeline_stage").Eq(string(stage)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(leadsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgLead
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserLeads{}, fmt.Errorf("could not fetch user leads from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	domainRows, err := pgLeadsToDomain(rows)
	if err != nil {
		return storage.UserLeads{}, err
	}

	return storage.UserLeads{
		Leads:      domainRows,
		NextCursor: nextCursor,
	}, nil
}

// LeadsByRunID returns the leads created by the given run, oldest first.
func (p *PgSQL) LeadsByRunID(ctx context.Context,
	userID domain.UserID,
	runID domain.RunID) ([]domain.Lead, error) {
	var rows []PgLead
	if err := p.Builder.From(leadsTable).
		Where(
			goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
			goqu.I("source_run_id").Eq(uuid.UUID(runID)),
			goqu.I("deleted_at").IsNull(),
		).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch leads by run id: %w", err)
	}

	return pgLeadsToDomain(rows)
}

// UpdateLeadByID updates a single lead with the provided fields.
// Only non-nil fields from updates are set and updated_at is set automatically.
func (p *PgSQL) UpdateLeadByID(ctx context.Context,
	userID domain.UserID,
	id domain.LeadID,
	updates storage.LeadUpdates) (*domain.Lead, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Stage != nil {
		rec["pipeline_stage"] = string(*updates.Stage)
	}
	if updates.ContactName != nil {
		rec["contact_name"] = *updates.ContactName
	}
	if updates.ContactEmail != nil {
		rec["contact_email"] = *updates.ContactEmail
	}
	if updates.ContactPhone != nil {
		rec["contact_phone"] = *updates.ContactPhone
	}
	if updates.Notes != nil {
		rec["notes"] = *updates.Notes
	}

	var row PgLead
	found, err := p.Builder.Update(leadsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgLead{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update lead in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteLead performs a soft delete by setting deleted_at timestamp
// for a given lead id and user, returning the deleted record.
func (p *PgSQL) DeleteLead(ctx context.Context, userID domain.UserID, id domain.LeadID) (*domain.Lead, error) {
	var row PgLead
	found, err := p.Builder.Update(leadsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("owner_user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgLead{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete lead in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
