package storage

import (
	"context"
	"leadscout/pkg/domain"
	"time"
)

// PlanUpdates describes a set of optional fields applied to a user's plan
// record by the billing reconciler. Only non-nil fields will be updated.
type PlanUpdates struct {
	// Status is the new subscription tier.
	Status domain.PlanStatus
	// DiscoveryLimit is the monthly budget matching the new tier.
	DiscoveryLimit int
	// BillingCustomerID, when provided, links the record to the external
	// payment processor.
	BillingCustomerID *string
	// BillingSubscriptionID, when provided, replaces the stored subscription
	// reference. An empty string value clears it (set to NULL).
	BillingSubscriptionID *string
	// ResetUsage, when true, zeroes the monthly usage counter.
	ResetUsage bool
}

// PlanStorage defines operations on per-user plan/quota records. All mutations
// rely on the database's row-level locking for per-user serialization: quota
// consumption is a single conditional update, never a read-modify-write.
type PlanStorage interface {
	// EnsurePlan inserts the given plan record if the user has none yet and
	// returns the record as stored. An existing record is returned unchanged;
	// the provided defaults are ignored in that case.
	EnsurePlan(ctx context.Context, plan domain.UserPlanState) (*domain.UserPlanState, error)
	// PlanByUserID fetches the plan record for a user. Returns nil when the
	// user has no record yet.
	PlanByUserID(ctx context.Context, userID domain.UserID) (*domain.UserPlanState, error)
	// PlanByBillingCustomerID fetches the plan record linked to the given
	// external customer ID. Returns nil when no record matches.
	PlanByBillingCustomerID(ctx context.Context, customerID string) (*domain.UserPlanState, error)
	// ResetUsageIfDue atomically zeroes the usage counter and advances the
	// reset date to nextReset, but only when the stored reset date is not after
	// now. A no-op otherwise.
	ResetUsageIfDue(ctx context.Context, userID domain.UserID, now, nextReset time.Time) error
	// ConsumeQuota atomically increments the usage counter by n, but only when
	// the result stays within the discovery limit. Returns the updated record,
	// or nil when the budget is insufficient (in which case nothing changed).
	ConsumeQuota(ctx context.Context, userID domain.UserID, n int) (*domain.UserPlanState, error)
	// UpdatePlanByUserID applies the given updates to the user's plan record
	// and returns the updated row, or nil when the user has no record.
	UpdatePlanByUserID(ctx context.Context,
		userID domain.UserID,
		updates PlanUpdates) (*domain.UserPlanState, error)
}
