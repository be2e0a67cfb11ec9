// Package bizsearch defines interfaces and data types used to query an
// external business-search source for discovery candidates.
package bizsearch

import (
	"context"
	"leadscout/pkg/domain"
	"time"
)

// RateLimitStatus describes the current API rate‑limit status returned by the
// underlying business-search provider.
type RateLimitStatus struct {
	Limit     int       // Limit is the total number of allowed requests in the current window.
	Remaining int       // Remaining indicates how many requests are left in the current window.
	ResetAt   time.Time // ResetAt is when the rate‑limit window resets.
}

// Client is the abstraction for business-search sources. Implementations turn
// a query into a batch of raw discovery candidates.
type Client interface {
	// Search fetches up to limit candidates matching the query and optional
	// location, plus the current rate‑limit status. Candidates are raw and
	// unvalidated; callers must classify and normalize them.
	Search(ctx context.Context, query, location string, limit int) ([]domain.DiscoveryCandidate, RateLimitStatus, error)
}
