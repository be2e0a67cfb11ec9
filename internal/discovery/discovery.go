// Package discovery implements the discovery-run and lead-pipeline service:
// starting quota-gated runs, manual lead adds, and outreach pipeline edits.
package discovery

import (
	"context"
	"fmt"
	"leadscout/internal/classifier"
	"leadscout/internal/config"
	"leadscout/internal/quota"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options configure how discovery runs are enqueued.
type Options struct {
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when processing a run before marking it failed.
	MaxAttempts int
	// UniqueRunPeriod is the lookback window during which an identical
	// (user, query, location) run is treated as a duplicate.
	UniqueRunPeriod time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxAttempts:     cfg.Discovery.MaxAttempts,
		UniqueRunPeriod: cfg.Discovery.UniqueRunPeriod,
	}
}

// service is the concrete implementation of the Discoverer interface.
// It coordinates persistence with the storage layer, job enqueueing and the
// quota guard.
type service struct {
	options Options
	storage storage.Storage
	guard   quota.Guard
}

// StartRun records a pending discovery run and enqueues a background job for
// it in one transaction. The quota headroom check up front makes a fully
// exhausted user fail fast; the budget itself is consumed per persisted lead
// by the worker.
func (s service) StartRun(ctx context.Context,
	userID domain.UserID,
	query, location string) (*domain.DiscoveryRun, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "query must not be empty")
	}
	location = strings.TrimSpace(location)

	var run *domain.DiscoveryRun
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if _, err := s.guard.CheckHeadroom(ctx, tx, userID); err != nil {
			return err
		}

		res, err := tx.StoreRun(ctx, domain.DiscoveryRun{
			OwnerUserID: userID,
			Query:       query,
			Location:    location,
			Status:      domain.RunStatusPending,
		})
		if err != nil {
			return fmt.Errorf("could not store run: %w", err)
		}
		run = res

		jobAdded, err := tx.AddJob(ctx, JobArgs{
			RunID:           uuid.UUID(run.ID),
			UserID:          uuid.UUID(userID),
			Query:           query,
			Location:        location,
			maxAttempts:     s.options.MaxAttempts,
			uniqueJobPeriod: s.options.UniqueRunPeriod,
		}, nil)
		if err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		// river unique jobs prevent duplicate in-flight runs for the same
		// (user, query, location); rolling back also discards the run record.
		if !jobAdded {
			return serrors.With(serrors.ErrConflict, "an identical discovery is already in progress")
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return run, nil
}

// Run fetches a run and the leads it created. It returns a not-found error
// when no matching run exists.
func (s service) Run(ctx context.Context,
	userID domain.UserID,
	runID domain.RunID) (*domain.DiscoveryRun, []domain.Lead, error) {
	run, err := s.storage.RunByID(ctx, userID, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get run: %w", err)
	}
	if run == nil {
		return nil, nil, serrors.With(serrors.ErrNotFound, "discovery run not found")
	}

	leads, err := s.storage.LeadsByRunID(ctx, userID, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get run leads: %w", err)
	}

	return run, leads, nil
}

// AddLead persists one manually supplied candidate. The candidate passes
// through the same classifier and normalizer as discovered ones, and a
// successful insert consumes one unit of discovery budget in the same
// transaction.
func (s service) AddLead(ctx context.Context,
	userID domain.UserID,
	candidate domain.DiscoveryCandidate) (*domain.Lead, error) {
	if v := classifier.Classify(candidate.Domain, candidate.DisplayName); !v.Admissible() {
		return nil, serrors.With(serrors.ErrBadRequest, "not a standalone business (%s)", v)
	}

	lead, err := NormalizeCandidate(userID, candidate)
	if err != nil {
		return nil, err
	}

	var stored *domain.Lead
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreLead(ctx, lead)
		if err != nil {
			return fmt.Errorf("could not store lead: %w", err)
		}
		if res == nil {
			return serrors.With(serrors.ErrConflict, "a lead for this business already exists")
		}
		stored = res

		if _, err := s.guard.TryConsume(ctx, tx, userID, 1); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return stored, nil
}

// UserLeads returns a page of leads for the given user filtered by stage.
// It supports cursor-based pagination using an RFC3339 timestamp string and
// returns the next cursor when more results are available.
func (s service) UserLeads(ctx context.Context,
	userID domain.UserID,
	stage domain.PipelineStage,
	cursor string,
	limit uint) ([]domain.Lead, string, error) {
	if stage != "" && !domain.ValidStage(stage) {
		return nil, "", serrors.With(serrors.ErrBadRequest, "invalid pipeline stage %q", stage)
	}

	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := s.storage.UserLeads(ctx, userID, stage, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user leads: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Leads, next, nil
}

// Lead fetches a single lead by ID for the given user. It returns a
// not-found error when no matching lead exists.
func (s service) Lead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) (*domain.Lead, error) {
	res, err := s.storage.LeadByID(ctx, userID, leadID)
	if err != nil {
		return nil, fmt.Errorf("could not get lead: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return res, nil
}

// UpdateLead applies pipeline-stage and contact-info edits. Stage changes are
// validated against the known stages, and terminal stages (won, lost) can not
// be left.
func (s service) UpdateLead(ctx context.Context,
	userID domain.UserID,
	leadID domain.LeadID,
	updates storage.LeadUpdates) (*domain.Lead, error) {
	if updates.Stage != nil {
		if !domain.ValidStage(*updates.Stage) {
			return nil, serrors.With(serrors.ErrBadRequest, "invalid pipeline stage %q", *updates.Stage)
		}

		current, err := s.Lead(ctx, userID, leadID)
		if err != nil {
			return nil, err
		}
		if current.Stage.Terminal() && *updates.Stage != current.Stage {
			return nil, serrors.With(serrors.ErrConflict, "lead already %s", strings.ToLower(string(current.Stage)))
		}
	}
	if updates.ContactEmail != nil && *updates.ContactEmail != "" {
		v := normalizeEmail(*updates.ContactEmail)
		if v == "" {
			return nil, serrors.With(serrors.ErrBadRequest, "invalid contact email")
		}
		updates.ContactEmail = &v
	}

	res, err := s.storage.UpdateLeadByID(ctx, userID, leadID, updates)
	if err != nil {
		return nil, fmt.Errorf("could not update lead: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return res, nil
}

// DeleteLead soft-deletes a lead belonging to the given user. If the lead
// does not exist, a not-found error is returned. The discovery budget already
// spent on the lead is not refunded.
func (s service) DeleteLead(ctx context.Context, userID domain.UserID, leadID domain.LeadID) error {
	res, err := s.storage.DeleteLead(ctx, userID, leadID)
	if err != nil {
		return fmt.Errorf("could not delete lead: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return nil
}

// New creates a new Discoverer instance backed by the provided storage, quota
// guard and options.
func New(storage storage.Storage, guard quota.Guard, options Options) Discoverer {
	return &service{
		options: options,
		storage: storage,
		guard:   guard,
	}
}
