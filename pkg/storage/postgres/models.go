package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"leadscout/pkg/domain"
	"time"

	"github.com/google/uuid"
)

type PgLead struct {
	ID          uuid.UUID `db:"id"            goqu:"skipinsert"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`

	CompanyName string `db:"company_name"`
	CompanyKey  string `db:"company_key"`
	Domain      string `db:"domain"`

	ContactName  string `db:"contact_name"`
	ContactEmail string `db:"contact_email"`
	ContactPhone string `db:"contact_phone"`

	WebsiteURL    string          `db:"website_url"`
	WebsiteScore  sql.NullInt64   `db:"website_score"`
	WebsiteIssues json.RawMessage `db:"website_issues"`
	SocialMedia   json.RawMessage `db:"social_media"`

	PipelineStage string        `db:"pipeline_stage"`
	Notes         string        `db:"notes"`
	SourceRunID   uuid.NullUUID `db:"source_run_id"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgLead) ToDomain() (*domain.Lead, error) {
	var issues, social []string
	if err := json.Unmarshal(p.WebsiteIssues, &issues); err != nil {
		return nil, fmt.Errorf("could not unmarshal website issues: %w", err)
	}
	if err := json.Unmarshal(p.SocialMedia, &social); err != nil {
		return nil, fmt.Errorf("could not unmarshal social media: %w", err)
	}

	var score *int
	if p.WebsiteScore.Valid {
		v := int(p.WebsiteScore.Int64)
		score = &v
	}
	var runID *domain.RunID
	if p.SourceRunID.Valid {
		v := domain.RunID(p.SourceRunID.UUID)
		runID = &v
	}

	return &domain.Lead{
		ID:            domain.LeadID(p.ID),
		OwnerUserID:   domain.UserID(p.OwnerUserID),
		CompanyName:   p.CompanyName,
		CompanyKey:    p.CompanyKey,
		Domain:        p.Domain,
		ContactName:   p.ContactName,
		ContactEmail:  p.ContactEmail,
		ContactPhone:  p.ContactPhone,
		WebsiteURL:    p.WebsiteURL,
		WebsiteScore:  score,
		WebsiteIssues: issues,
		SocialMedia:   social,
		Stage:         domain.PipelineStage(p.PipelineStage),
		Notes:         p.Notes,
		SourceRunID:   runID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt.Time,
		DeletedAt:     p.DeletedAt.Time,
	}, nil
}

func (p *PgLead) FromDomain(lead domain.Lead) error {
	issues, err := json.Marshal(emptyIfNil(lead.WebsiteIssues))
	if err != nil {
		return fmt.Errorf("could not marshal website issues: %w", err)
	}
	social, err := json.Marshal(emptyIfNil(lead.SocialMedia))
	if err != nil {
		return fmt.Errorf("could not marshal social media: %w", err)
	}

	var score sql.NullInt64
	if lead.WebsiteScore != nil {
		score = sql.NullInt64{Int64: int64(*lead.WebsiteScore), Valid: true}
	}
	var runID uuid.NullUUID
	if lead.SourceRunID != nil {
		runID = uuid.NullUUID{UUID: uuid.UUID(*lead.SourceRunID), Valid: true}
	}

	*p = PgLead{
		ID:            uuid.UUID(lead.ID),
		OwnerUserID:   uuid.UUID(lead.OwnerUserID),
		CompanyName:   lead.CompanyName,
		CompanyKey:    lead.CompanyKey,
		Domain:        lead.Domain,
		ContactName:   lead.ContactName,
		ContactEmail:  lead.ContactEmail,
		ContactPhone:  lead.ContactPhone,
		WebsiteURL:    lead.WebsiteURL,
		WebsiteScore:  score,
		WebsiteIssues: issues,
		SocialMedia:   social,
		PipelineStage: string(lead.Stage),
		Notes:         lead.Notes,
		SourceRunID:   runID,
		CreatedAt:     lead.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  lead.UpdatedAt,
			Valid: !lead.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  lead.DeletedAt,
			Valid: !lead.DeletedAt.IsZero(),
		},
	}

	return nil
}

// emptyIfNil keeps JSONB array columns as [] instead of null for nil slices.
func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}

	return in
}

func pgLeadsToDomain(leads []PgLead) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0, len(leads))
	for i := range leads {
		d, err := leads[i].ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

type PgRun struct {
	ID          uuid.UUID `db:"id"            goqu:"skipinsert"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`

	Query    string `db:"query"`
	Location string `db:"location"`
	Status   string `db:"status"`

	CandidatesSeen    int `db:"candidates_seen"    goqu:"skipinsert"`
	LeadsCreated      int `db:"leads_created"      goqu:"skipinsert"`
	DuplicatesSkipped int `db:"duplicates_skipped" goqu:"skipinsert"`
	NoiseFiltered     int `db:"noise_filtered"     goqu:"skipinsert"`

	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgRun) ToDomain() *domain.DiscoveryRun {
	return &domain.DiscoveryRun{
		ID:                domain.RunID(p.ID),
		OwnerUserID:       domain.UserID(p.OwnerUserID),
		Query:             p.Query,
		Location:          p.Location,
		Status:            domain.RunStatus(p.Status),
		CandidatesSeen:    p.CandidatesSeen,
		LeadsCreated:      p.LeadsCreated,
		DuplicatesSkipped: p.DuplicatesSkipped,
		NoiseFiltered:     p.NoiseFiltered,
		LastError:         p.LastError.String,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt.Time,
	}
}

func (p *PgRun) FromDomain(run domain.DiscoveryRun) {
	*p = PgRun{
		ID:                uuid.UUID(run.ID),
		OwnerUserID:       uuid.UUID(run.OwnerUserID),
		Query:             run.Query,
		Location:          run.Location,
		Status:            string(run.Status),
		CandidatesSeen:    run.CandidatesSeen,
		LeadsCreated:      run.LeadsCreated,
		DuplicatesSkipped: run.DuplicatesSkipped,
		NoiseFiltered:     run.NoiseFiltered,
		LastError: sql.NullString{
			String: run.LastError,
			Valid:  run.LastError != "",
		},
		CreatedAt: run.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  run.UpdatedAt,
			Valid: !run.UpdatedAt.IsZero(),
		},
	}
}

type PgPlan struct {
	UserID uuid.UUID `db:"user_id"`

	PlanStatus      string    `db:"plan_status"`
	DiscoveriesUsed int       `db:"discoveries_used"`
	DiscoveryLimit  int       `db:"discovery_limit"`
	UsageResetDate  time.Time `db:"usage_reset_date"`

	BillingCustomerID     sql.NullString `db:"billing_customer_id"`
	BillingSubscriptionID sql.NullString `db:"billing_subscription_id"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgPlan) ToDomain() *domain.UserPlanState {
	return &domain.UserPlanState{
		UserID:                domain.UserID(p.UserID),
		Status:                domain.PlanStatus(p.PlanStatus),
		DiscoveriesUsed:       p.DiscoveriesUsed,
		DiscoveryLimit:        p.DiscoveryLimit,
		UsageResetDate:        p.UsageResetDate,
		BillingCustomerID:     p.BillingCustomerID.String,
		BillingSubscriptionID: p.BillingSubscriptionID.String,
		UpdatedAt:             p.UpdatedAt.Time,
	}
}

func (p *PgPlan) FromDomain(plan domain.UserPlanState) {
	*p = PgPlan{
		UserID:          uuid.UUID(plan.UserID),
		PlanStatus:      string(plan.Status),
		DiscoveriesUsed: plan.DiscoveriesUsed,
		DiscoveryLimit:  plan.DiscoveryLimit,
		UsageResetDate:  plan.UsageResetDate,
		BillingCustomerID: sql.NullString{
			String: plan.BillingCustomerID,
			Valid:  plan.BillingCustomerID != "",
		},
		BillingSubscriptionID: sql.NullString{
			String: plan.BillingSubscriptionID,
			Valid:  plan.BillingSubscriptionID != "",
		},
		UpdatedAt: sql.NullTime{
			Time:  plan.UpdatedAt,
			Valid: !plan.UpdatedAt.IsZero(),
		},
	}
}
