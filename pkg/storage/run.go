package storage

import (
	"context"
	"leadscout/pkg/domain"
)

// RunUpdates describes the fields that can be applied to a discovery run when
// it finishes or fails. Counter fields are only updated when non-nil.
type RunUpdates struct {
	// Status is the new lifecycle state to set for the run.
	Status domain.RunStatus
	// CandidatesSeen, LeadsCreated, DuplicatesSkipped and NoiseFiltered replace
	// the stored counters when provided.
	CandidatesSeen    *int
	LeadsCreated      *int
	DuplicatesSkipped *int
	NoiseFiltered     *int
	// LastError, when provided, sets the last error text. An empty string value
	// indicates the error should be cleared (set to NULL).
	LastError *string
}

// RunStorage defines operations on discovery run records.
type RunStorage interface {
	// StoreRun inserts a run and returns the stored row as it exists in the
	// database (including generated fields).
	StoreRun(ctx context.Context, run domain.DiscoveryRun) (*domain.DiscoveryRun, error)
	// RunByID fetches a run by its ID for the given user. Returns nil when not found.
	RunByID(ctx context.Context, userID domain.UserID, ID domain.RunID) (*domain.DiscoveryRun, error)
	// UpdateRunByID updates a single run identified by its ID and returns the
	// updated row, or nil when not found. updated_at is set automatically.
	UpdateRunByID(ctx context.Context, ID domain.RunID, updates RunUpdates) (*domain.DiscoveryRun, error)
}
