// Package quota enforces the per-user monthly discovery budget. All mutations
// go through single conditional updates in storage, so concurrent discovery
// runs for the same user can never push usage past the limit.
package quota

import (
	"context"
	"fmt"
	"leadscout/internal/config"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage"
	"time"
)

// Options configure the plan tiers the guard provisions and enforces.
type Options struct {
	// FreeLimit is the monthly discovery budget of the free tier.
	FreeLimit int
	// ProLimit is the monthly discovery budget of the pro tier.
	ProLimit int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		FreeLimit: cfg.Discovery.FreeLimit,
		ProLimit:  cfg.Discovery.ProLimit,
	}
}

// Guard is the discovery quota gate. Methods take a storage handle explicitly
// so callers can run them inside an open transaction.
type Guard struct {
	options Options
}

// LimitFor returns the monthly discovery budget of a plan tier.
func (g Guard) LimitFor(status domain.PlanStatus) int {
	if status == domain.PlanPro {
		return g.options.ProLimit
	}

	return g.options.FreeLimit
}

// CurrentPlan returns the user's plan record, provisioning a free-tier record
// on first contact and applying a due monthly usage reset before returning.
func (g Guard) CurrentPlan(ctx context.Context,
	store storage.AllStorage,
	userID domain.UserID) (*domain.UserPlanState, error) {
	now := time.Now().UTC()

	plan, err := store.EnsurePlan(ctx, domain.UserPlanState{
		UserID:         userID,
		Status:         domain.PlanFree,
		DiscoveryLimit: g.options.FreeLimit,
		UsageResetDate: domain.NextUsageResetDate(now),
	})
	if err != nil {
		return nil, fmt.Errorf("could not ensure plan: %w", err)
	}

	if !plan.UsageResetDate.After(now) {
		if err := store.ResetUsageIfDue(ctx, userID, now, domain.NextUsageResetDate(now)); err != nil {
			return nil, fmt.Errorf("could not reset usage: %w", err)
		}
		plan, err = store.PlanByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("could not reload plan: %w", err)
		}
		if plan == nil {
			return nil, fmt.Errorf("plan record vanished for user %s", userID)
		}
	}

	return plan, nil
}

// TryConsume atomically charges n units of the user's monthly budget and
// returns the updated plan. It returns ErrQuotaExceeded without any mutation
// when the remaining budget is insufficient.
func (g Guard) TryConsume(ctx context.Context,
	store storage.AllStorage,
	userID domain.UserID,
	n int) (*domain.UserPlanState, error) {
	plan, err := g.CurrentPlan(ctx, store, userID)
	if err != nil {
		return nil, err
	}

	updated, err := store.ConsumeQuota(ctx, userID, n)
	if err != nil {
		return nil, fmt.Errorf("could not consume quota: %w", err)
	}
	if updated == nil {
		return nil, serrors.With(serrors.ErrQuotaExceeded,
			"monthly discovery limit reached (%d/%d)", plan.DiscoveriesUsed, plan.DiscoveryLimit)
	}

	return updated, nil
}

// CheckHeadroom verifies the user still has budget left without consuming any.
// Discovery runs call this up front so a fully exhausted user fails fast
// instead of enqueueing a run that can not persist anything.
func (g Guard) CheckHeadroom(ctx context.Context,
	store storage.AllStorage,
	userID domain.UserID) (*domain.UserPlanState, error) {
	plan, err := g.CurrentPlan(ctx, store, userID)
	if err != nil {
		return nil, err
	}
	if plan.Remaining() == 0 {
		return nil, serrors.With(serrors.ErrQuotaExceeded,
			"monthly discovery limit reached (%d/%d)", plan.DiscoveriesUsed, plan.DiscoveryLimit)
	}

	return plan, nil
}

// New creates a Guard with the given options.
func New(options Options) Guard {
	return Guard{options: options}
}
