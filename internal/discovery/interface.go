package discovery

import (
	"context"
	"leadscout/pkg/domain"
	"leadscout/pkg/storage"
)

// Discoverer is the application service behind the discovery and lead API.
type Discoverer interface {
	// StartRun checks quota headroom, records a pending run and enqueues a
	// background job for it. It fails with a quota error when the monthly
	// budget is already exhausted, and with a conflict when an identical run
	// is still in flight.
	StartRun(ctx context.Context, userID domain.UserID, query, location string) (*domain.DiscoveryRun, error)
	// Run fetches a run together with the leads it created so far.
	Run(ctx context.Context, userID domain.UserID, runID domain.RunID) (*domain.DiscoveryRun, []domain.Lead, error)

	// AddLead classifies, normalizes and persists one manually supplied
	// candidate, consuming one unit of discovery budget.
	AddLead(ctx context.Context, userID domain.UserID, candidate domain.DiscoveryCandidate) (*domain.Lead, error)
	// UserLeads returns a page of the user's leads filtered by optional stage,
	// with cursor-based pagination.
	UserLeads(ctx context.Context,
		userID domain.UserID,
		stage domain.PipelineStage,
		cursor string,
		limit uint) ([]domain.Lead, string, error)
	// Lead fetches a single lead by ID.
	Lead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) (*domain.Lead, error)
	// UpdateLead applies contact-info and pipeline-stage edits to a lead.
	UpdateLead(ctx context.Context,
		userID domain.UserID,
		leadID domain.LeadID,
		updates storage.LeadUpdates) (*domain.Lead, error)
	// DeleteLead soft-deletes a lead.
	DeleteLead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) error
}
