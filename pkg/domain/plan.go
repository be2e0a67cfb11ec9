package domain

import "time"

// PlanStatus is the subscription tier of a user.
type PlanStatus string

const (
	// PlanFree is the default tier with a small monthly discovery budget.
	PlanFree PlanStatus = "free"
	// PlanPro is the paid tier with a larger monthly discovery budget.
	PlanPro PlanStatus = "pro"
)

// UserPlanState is the per-user subscription tier and usage-counter record.
// It is owned exclusively by the quota guard and the billing reconciler; no
// other component writes it.
type UserPlanState struct {
	// UserID identifies the owning user; there is exactly one record per user.
	UserID UserID `json:"userId"`

	// Status is the current subscription tier.
	Status PlanStatus `json:"planStatus"`

	// DiscoveriesUsed counts leads persisted in the current calendar month.
	DiscoveriesUsed int `json:"monthlyDiscoveriesUsed"`
	// DiscoveryLimit is the monthly budget for the current tier.
	DiscoveryLimit int `json:"discoveryLimit"`
	// UsageResetDate is the first of the next calendar month; once it passes,
	// DiscoveriesUsed resets to zero.
	UsageResetDate time.Time `json:"usageResetDate"`

	// BillingCustomerID links the user to the external payment processor.
	BillingCustomerID string `json:"-"`
	// BillingSubscriptionID is the processor's subscription for this user.
	BillingSubscriptionID string `json:"-"`

	// UpdatedAt is the time when the record was last mutated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remaining returns the discovery budget still available this month.
func (p UserPlanState) Remaining() int {
	if r := p.DiscoveryLimit - p.DiscoveriesUsed; r > 0 {
		return r
	}

	return 0
}

// NextUsageResetDate returns the first of the calendar month following now, in UTC.
func NextUsageResetDate(now time.Time) time.Time {
	now = now.UTC()

	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
