package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadID uniquely identifies a lead.
// It wraps uuid.UUID to provide type safety at the domain layer.
type LeadID uuid.UUID

// String returns the canonical UUID string form.
func (id LeadID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID as its canonical UUID string.
func (id LeadID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText parses a canonical UUID string.
func (id *LeadID) UnmarshalText(data []byte) error { return (*uuid.UUID)(id).UnmarshalText(data) }

// WebsiteNone is the sentinel stored in Lead.WebsiteURL when no website was
// found for the business. The scoring engine treats it as "no website".
const WebsiteNone = "none"

// PipelineStage represents where a lead currently sits in the outreach pipeline.
type PipelineStage string

const (
	StageNew       PipelineStage = "NEW"
	StageContacted PipelineStage = "CONTACTED"
	StageQualified PipelineStage = "QUALIFIED"
	StageWon       PipelineStage = "WON"
	StageLost      PipelineStage = "LOST"
)

// ValidStage reports whether s is one of the known pipeline stages.
func ValidStage(s PipelineStage) bool {
	switch s {
	case StageNew, StageContacted, StageQualified, StageWon, StageLost:
		return true
	}

	return false
}

// Terminal reports whether the stage ends the pipeline. Won and Lost leads
// cannot be moved to another stage.
func (s PipelineStage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// Lead is a persisted, deduplicated, user-owned business record eligible for
// outreach tracking. The opportunity score is never stored on the lead; it is
// recomputed from these fields on every read.
type Lead struct {
	// ID is the unique identifier of the lead.
	ID LeadID `json:"id"`
	// OwnerUserID is the user that owns this lead. Leads are never shared.
	OwnerUserID UserID `json:"ownerUserId"`

	// CompanyName is the display name of the business.
	CompanyName string `json:"companyName"`
	// CompanyKey is the deduplication key within an owner: the normalized
	// registrable domain when one exists, otherwise the normalized company name.
	CompanyKey string `json:"-"`
	// Domain is the normalized registrable domain of the business, or empty
	// when the business has no domain of its own.
	Domain string `json:"domain,omitempty"`

	// ContactName, ContactEmail and ContactPhone hold optional contact details.
	// Malformed values are dropped during normalization, not rejected.
	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`

	// WebsiteURL is the business website, or the WebsiteNone sentinel.
	WebsiteURL string `json:"websiteUrl"`
	// WebsiteScore is the measured quality of the website (0-100), when known.
	WebsiteScore *int `json:"websiteScore,omitempty"`
	// WebsiteIssues lists problems detected on the website.
	WebsiteIssues []string `json:"websiteIssues"`
	// SocialMedia lists social profiles found for the business.
	SocialMedia []string `json:"socialMedia"`

	// Stage is the lead's position in the outreach pipeline.
	Stage PipelineStage `json:"pipelineStage"`
	// Notes holds free-form outreach notes.
	Notes string `json:"notes,omitempty"`

	// SourceRunID references the discovery run that created the lead, when it
	// was not added manually.
	SourceRunID *RunID `json:"sourceRunId,omitempty"`

	// CreatedAt is the time when the lead was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the lead was last edited.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the lead was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}

// HasWebsite reports whether the lead has an actual website recorded.
func (l Lead) HasWebsite() bool {
	return l.WebsiteURL != "" && l.WebsiteURL != WebsiteNone
}
