package storage

import (
	"context"
	"leadscout/pkg/domain"
	"time"
)

// LeadUpdates describes a set of optional fields that can be applied to an
// existing lead during an update. Only non-nil fields will be updated.
type LeadUpdates struct {
	// Stage is the new pipeline stage to set for the lead.
	Stage *domain.PipelineStage
	// ContactName, ContactEmail and ContactPhone replace the stored contact
	// details. An empty string value clears the field.
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	// Notes replaces the stored outreach notes.
	Notes *string
}

// UserLeads groups a page of leads returned for a user together with an
// optional NextCursor used for pagination.
type UserLeads struct {
	// Leads contains the current page of lead records.
	Leads []domain.Lead
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// LeadStorage defines CRUD and query operations related to leads.
// Implementations must enforce the one-lead-per-(owner, company key) invariant
// and handle soft deletes.
type LeadStorage interface {
	// StoreLead inserts a lead and returns the stored row (including generated
	// fields). When another non-deleted lead with the same (owner, company key)
	// already exists, nothing is inserted and nil is returned: the first write
	// wins and the caller must treat the candidate as a duplicate.
	StoreLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error)
	// LeadByID fetches a lead by its ID for the given user, excluding
	// soft-deleted records. Returns nil when not found.
	LeadByID(ctx context.Context, userID domain.UserID, ID domain.LeadID) (*domain.Lead, error)
	// UserLeads returns a page of leads for a user created before the optional
	// cursor time, limited by the given limit. If stage is non-empty, results
	// are filtered to records with the given pipeline stage.
	UserLeads(ctx context.Context,
		userID domain.UserID,
		stage domain.PipelineStage,
		cursor time.Time,
		limit uint) (UserLeads, error)
	// LeadsByRunID returns all leads created by the given discovery run for the
	// given user, oldest first.
	LeadsByRunID(ctx context.Context, userID domain.UserID, runID domain.RunID) ([]domain.Lead, error)
	// UpdateLeadByID updates a single lead identified by its ID and returns the
	// updated row, or nil when not found. The update ignores soft-deleted rows
	// and sets updated_at automatically. Only provided fields are changed.
	UpdateLeadByID(ctx context.Context,
		userID domain.UserID,
		ID domain.LeadID,
		updates LeadUpdates) (*domain.Lead, error)
	// DeleteLead performs a soft delete for the given lead ID and user ID and
	// returns the deleted lead, or nil if it was not found.
	DeleteLead(ctx context.Context, userID domain.UserID, ID domain.LeadID) (*domain.Lead, error)
}
