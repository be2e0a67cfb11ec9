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
	plansTable = "user_plans"
)

// EnsurePlan lazily provisions a plan record for the user. An existing record
// is returned unchanged.
func (p *PgSQL) EnsurePlan(ctx context.Context, plan domain.UserPlanState) (*domain.UserPlanState, error) {
	var pgPlan PgPlan
	pgPlan.FromDomain(plan)

	var row PgPlan
	found, err := p.Builder.Insert(plansTable).
		Rows(pgPlan).
		OnConflict(goqu.DoNothing()).
		Returning(&PgPlan{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not ensure plan in pg: %w", err)
	}
	if found {
		return row.ToDomain(), nil
	}

	// the row already existed
	existing, err := p.PlanByUserID(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("could not ensure plan in pg: record vanished after conflict")
	}

	return existing, nil
}

// PlanByUserID returns the plan record for a user, or nil when none exists yet.
func (p *PgSQL) PlanByUserID(ctx context.Context, userID domain.UserID) (*domain.UserPlanState, error) {
	var row PgPlan
	found, err := p.Builder.From(plansTable).
		Where(goqu.I("user_id").Eq(uuid.UUID(userID))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch plan by user id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// PlanByBillingCustomerID returns the plan record linked to the given external
// customer, or nil when no record matches.
func (p *PgSQL) PlanByBillingCustomerID(ctx context.Context, customerID string) (*domain.UserPlanState, error) {
	var row PgPlan
	found, err := p.Builder.From(plansTable).
		Where(goqu.I("billing_customer_id").Eq(customerID)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch plan by billing customer id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// ResetUsageIfDue zeroes the usage counter and advances the reset date in a
// single conditional UPDATE. A no-op when the stored reset date is still in
// the future.
func (p *PgSQL) ResetUsageIfDue(ctx context.Context, userID domain.UserID, now, nextReset time.Time) error {
	_, err := p.Builder.Update(plansTable).
		Set(goqu.Record{
			"discoveries_used": 0,
			"usage_reset_date": nextReset,
			"updated_at":       goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("usage_reset_date").Lte(now),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not reset plan usage in pg: %w", err)
	}

	return nil
}

// ConsumeQuota increments the usage counter by n only while the result stays
// within the discovery limit. The conditional UPDATE serializes concurrent
// consumers on the row lock, so the limit can never be overshot.
func (p *PgSQL) ConsumeQuota(ctx context.Context, userID domain.UserID, n int) (*domain.UserPlanState, error) {
	var row PgPlan
	found, err := p.Builder.Update(plansTable).
		Set(goqu.Record{
			"discoveries_used": goqu.L("discoveries_used + ?", n),
			"updated_at":       goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.L("discoveries_used + ? <= discovery_limit", n),
	).Returning(&PgPlan{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not consume quota in pg: %w", err)
	}
	if !found {
		// insufficient budget; nothing was changed
		return nil, nil
	}

	return row.ToDomain(), nil
}

// UpdatePlanByUserID applies plan transitions from the billing reconciler.
func (p *PgSQL) UpdatePlanByUserID(ctx context.Context,
	userID domain.UserID,
	updates storage.PlanUpdates) (*domain.UserPlanState, error) {
	rec := goqu.Record{
		"updated_at":      goqu.L("CURRENT_TIMESTAMP"),
		"plan_status":     string(updates.Status),
		"discovery_limit": updates.DiscoveryLimit,
	}
	if updates.BillingCustomerID != nil {
		rec["billing_customer_id"] = *updates.BillingCustomerID
	}
	if updates.BillingSubscriptionID != nil {
		if *updates.BillingSubscriptionID == "" {
			// set to NULL when empty string provided
			rec["billing_subscription_id"] = goqu.L("NULL")
		} else {
			rec["billing_subscription_id"] = *updates.BillingSubscriptionID
		}
	}
	if updates.ResetUsage {
		rec["discoveries_used"] = 0
	}

	var row PgPlan
	found, err := p.Builder.Update(plansTable).
		Set(rec).Where(
		goqu.I("user_id").Eq(uuid.UUID(userID)),
	).Returning(&PgPlan{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update plan in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
