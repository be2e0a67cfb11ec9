package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies a discovery run.
type RunID uuid.UUID

// String returns the canonical UUID string form.
func (id RunID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID as its canonical UUID string.
func (id RunID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText parses a canonical UUID string.
func (id *RunID) UnmarshalText(data []byte) error { return (*uuid.UUID)(id).UnmarshalText(data) }

// RunStatus represents the lifecycle state of a discovery run.
type RunStatus string

const (
	// RunStatusPending indicates the run has been enqueued but not processed yet.
	RunStatusPending RunStatus = "PENDING"
	// RunStatusCompleted indicates the run finished and all admissible
	// candidates were processed.
	RunStatusCompleted RunStatus = "COMPLETED"
	// RunStatusQuotaExceeded indicates the run stopped because the owner's
	// monthly discovery budget ran out. Leads persisted before the budget was
	// exhausted are kept.
	RunStatusQuotaExceeded RunStatus = "QUOTA_EXCEEDED"
	// RunStatusFailed indicates the run ended with an error; see LastError.
	RunStatusFailed RunStatus = "FAILED"
)

// DiscoveryRun is one batch operation that turns candidates into persisted
// leads, gated by the owner's discovery quota.
type DiscoveryRun struct {
	// ID is the unique identifier of the run.
	ID RunID `json:"id"`
	// OwnerUserID is the user who started the run and will own its leads.
	OwnerUserID UserID `json:"ownerUserId"`

	// Query is the business search query, e.g. "plumbers".
	Query string `json:"query"`
	// Location optionally narrows the search, e.g. "Austin, TX".
	Location string `json:"location,omitempty"`

	// Status is the current lifecycle state of the run.
	Status RunStatus `json:"status"`

	// CandidatesSeen counts raw candidates returned by the source.
	CandidatesSeen int `json:"candidatesSeen"`
	// LeadsCreated counts leads persisted by this run.
	LeadsCreated int `json:"leadsCreated"`
	// DuplicatesSkipped counts candidates that resolved to an existing lead.
	DuplicatesSkipped int `json:"duplicatesSkipped"`
	// NoiseFiltered counts candidates rejected by the classifier.
	NoiseFiltered int `json:"noiseFiltered"`

	// LastError stores the most recent error message, if any, encountered while
	// processing the run.
	LastError string `json:"-"`

	// CreatedAt is the time when the run was requested.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the run was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}
