package worker

import (
	"context"
	"errors"
	"fmt"
	"leadscout/internal/classifier"
	"leadscout/internal/config"
	"leadscout/internal/discovery"
	"leadscout/internal/quota"
	"leadscout/pkg/bizsearch"
	"leadscout/pkg/domain"
	"leadscout/pkg/logger"
	"leadscout/pkg/metrics"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// Options configure how discovery runs are processed.
type Options struct {
	// MaxCandidatesPerRun caps how many candidates one run requests from the
	// search source.
	MaxCandidatesPerRun int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxCandidatesPerRun: cfg.Discovery.MaxCandidatesPerRun,
	}
}

// DiscoveryRunWorker is a River worker that processes discovery runs: it
// fetches candidates from the business-search source, classifies and
// normalizes them, and persists the admissible ones as leads while charging
// the owner's monthly discovery budget one unit per persisted lead. It embeds
// River's WorkerDefaults to integrate with the job runtime and provides its
// own cooperative rate limiting against the search source.
//
// # Rate limiting overview
//
// The worker tracks the last known upstream rate-limit status (lastRLStatus)
// and the number of requests currently in flight (inFlightRequests). Before
// calling the search source, reserveRL is called to "reserve" a slot from the
// current budget. The effective remaining budget is computed as:
//
//	remaining := lastRLStatus.Remaining
//	if now > lastRLStatus.ResetAt { remaining = lastRLStatus.Limit }
//
// A request is allowed to start if remaining - inFlightRequests > 0. This
// allows multiple concurrent runs as long as they do not exceed the Remaining
// budget. When there is no budget left, reserveRL waits until either the
// ResetAt time is reached or another in-flight request finishes and signals
// requestFinishedChan.
//
// After a request completes, requestFinished is called with the server-provided
// bizsearch.RateLimitStatus gathered from the response. It decrements the
// inFlightRequests counter, notifies any goroutines waiting in reserveRL, and
// updates lastRLStatus. The update strategy prefers the freshest ResetAt and
// the lowest Remaining to avoid optimistic races when multiple concurrent
// requests report slightly different views of the budget.
//
// Bootstrap behavior: at startup, before any API call has returned a
// rate-limit status, lastRLStatus is initialized to a synthetic status with
// Limit=1, Remaining=1, and a far-future ResetAt. This permits exactly one
// request to go through so we can obtain real rate-limit headers from the
// upstream API.
//
// # Run outcomes
//
// Candidates that fail classification or normalization are counted, logged
// and skipped; they never fail the run. Each admissible candidate is inserted
// and charged in one transaction, so a lead is only kept when the budget for
// it was actually consumed. When the budget runs out mid-run, the run is
// finalized as quota-exceeded and the leads persisted before exhaustion are
// kept. Transient errors are retried by River; the run is only marked failed
// once the job is on its final attempt.
type DiscoveryRunWorker struct {
	river.WorkerDefaults[discovery.JobArgs]

	options Options
	// searcher queries the business-search source and reports rate-limit
	// status from the upstream API alongside any error.
	searcher bizsearch.Client
	storage  storage.Storage
	guard    quota.Guard

	// mu protects all fields below it: inFlightRequests and lastRLStatus.
	mu sync.Mutex
	// inFlightRequests counts how many searches are currently running. It is
	// used together with lastRLStatus.Remaining to decide if another request
	// may start.
	inFlightRequests int
	// lastRLStatus stores the most recent view of the upstream rate-limit
	// headers. It is updated after each request, preferring newer ResetAt and
	// lower Remaining to avoid optimistic races between concurrent requests.
	lastRLStatus *bizsearch.RateLimitStatus
	// requestFinishedChan is a non-buffered notification channel used to wake
	// up goroutines waiting in reserveRL when any in-flight request completes.
	requestFinishedChan chan struct{}
}

// NewDiscoveryRunWorker constructs a DiscoveryRunWorker. The returned worker
// enforces cooperative rate limiting across its concurrent jobs.
func NewDiscoveryRunWorker(searcher bizsearch.Client,
	store storage.Storage,
	guard quota.Guard,
	options Options) *DiscoveryRunWorker {
	return &DiscoveryRunWorker{
		options:             options,
		searcher:            searcher,
		storage:             store,
		guard:               guard,
		requestFinishedChan: make(chan struct{}),
	}
}

// Work executes a single discovery run while respecting the search source's
// rate limits. It reserves rate-limit budget, fetches candidates, pipes them
// through the classifier and normalizer, persists the survivors one
// transaction at a time, and finalizes the run record with the resulting
// counters.
func (w *DiscoveryRunWorker) Work(ctx context.Context, job *river.Job[discovery.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("runID", job.Args.RunID.String()),
		zap.String("query", job.Args.Query))

	userID := domain.UserID(job.Args.UserID)
	runID := domain.RunID(job.Args.RunID)

	// try to reserve a rate limit slot
	if err := w.reserveRL(ctx); err != nil {
		logger.Error(ctx, "error reserving rate limit", zap.Error(err))

		return fmt.Errorf("could not reserve rate limit: %w", err)
	}

	candidates, RLStatus, err := w.searcher.Search(ctx,
		job.Args.Query, job.Args.Location, w.options.MaxCandidatesPerRun)
	w.requestFinished(ctx, RLStatus)
	if err != nil {
		logger.Error(ctx, "error searching for businesses", zap.Error(err))

		if errors.Is(err, serrors.ErrRateLimited) {
			dur := time.Until(RLStatus.ResetAt)
			if dur < 0 {
				dur = 0
			}

			return river.JobSnooze(dur) //nolint: wrapcheck
		}

		return w.fail(ctx, job, runID, fmt.Errorf("could not search businesses: %w", err))
	}

	counters := runCounters{candidatesSeen: len(candidates)}
	for _, candidate := range candidates {
		if verdict := classifier.Classify(candidate.Domain, candidate.DisplayName); !verdict.Admissible() {
			counters.noiseFiltered++
			logger.Debug(ctx, "candidate filtered out",
				zap.String("candidateDomain", candidate.Domain),
				zap.String("verdict", string(verdict)))

			continue
		}

		lead, err := discovery.NormalizeCandidate(userID, candidate)
		if err != nil {
			counters.noiseFiltered++
			logger.Warn(ctx, "dropping unidentifiable candidate",
				zap.String("candidateName", candidate.DisplayName), zap.Error(err))

			continue
		}
		lead.SourceRunID = &runID

		created, err := w.persistLead(ctx, userID, lead)
		if err != nil {
			if errors.Is(err, serrors.ErrQuotaExceeded) {
				logger.Info(ctx, "discovery budget exhausted mid-run, keeping earlier leads",
					zap.Int("leadsCreated", counters.leadsCreated))

				return w.finalize(ctx, runID, domain.RunStatusQuotaExceeded, counters, err.Error())
			}

			return w.fail(ctx, job, runID, fmt.Errorf("could not persist lead: %w", err))
		}

		if created {
			counters.leadsCreated++
		} else {
			counters.duplicatesSkipped++
		}
	}

	if err := w.finalize(ctx, runID, domain.RunStatusCompleted, counters, ""); err != nil {
		return err
	}

	logger.Info(ctx, "discovery run completed",
		zap.Int("candidatesSeen", counters.candidatesSeen),
		zap.Int("leadsCreated", counters.leadsCreated),
		zap.Int("duplicatesSkipped", counters.duplicatesSkipped),
		zap.Int("noiseFiltered", counters.noiseFiltered))

	return nil
}

type runCounters struct {
	candidatesSeen    int
	leadsCreated      int
	duplicatesSkipped int
	noiseFiltered     int
}

// persistLead inserts one lead and charges one unit of the owner's budget in
// the same transaction, so the lead is only kept when the charge succeeded.
// It reports false without error when the lead already exists; an existing
// lead is never charged.
func (w *DiscoveryRunWorker) persistLead(ctx context.Context,
	userID domain.UserID,
	lead domain.Lead) (bool, error) {
	created := false
	err := w.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err := tx.StoreLead(ctx, lead)
		if err != nil {
			return fmt.Errorf("could not store lead: %w", err)
		}
		if stored == nil {
			return nil
		}
		created = true

		if _, err := w.guard.TryConsume(ctx, tx, userID, 1); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// finalize writes the run's terminal status and counters.
func (w *DiscoveryRunWorker) finalize(ctx context.Context,
	runID domain.RunID,
	status domain.RunStatus,
	counters runCounters,
	lastError string) error {
	if _, err := w.storage.UpdateRunByID(ctx, runID, storage.RunUpdates{
		Status:            status,
		CandidatesSeen:    &counters.candidatesSeen,
		LeadsCreated:      &counters.leadsCreated,
		DuplicatesSkipped: &counters.duplicatesSkipped,
		NoiseFiltered:     &counters.noiseFiltered,
		LastError:         &lastError,
	}); err != nil {
		return fmt.Errorf("could not finalize run: %w", err)
	}

	metrics.RecordRunFinished(string(status))
	metrics.RecordLeadsCreated(counters.leadsCreated)

	return nil
}

// fail records the error on the run and marks it failed once the job is out
// of attempts; earlier attempts leave the run pending so River's retry can
// still complete it.
func (w *DiscoveryRunWorker) fail(ctx context.Context,
	job *river.Job[discovery.JobArgs],
	runID domain.RunID,
	jobErr error) error {
	status := domain.RunStatusPending
	if job.Attempt >= job.MaxAttempts {
		status = domain.RunStatusFailed
	}

	msg := jobErr.Error()
	if _, err := w.storage.UpdateRunByID(ctx, runID, storage.RunUpdates{
		Status:    status,
		LastError: &msg,
	}); err != nil {
		logger.Error(ctx, "error recording run failure", zap.Error(err))
	}

	return jobErr
}

// requestFinished is called after every search attempt. It decrements the
// in-flight counter, notifies any goroutines waiting to reserve rate limit,
// and updates the last known rate-limit status using a conservative merge
// strategy to avoid races between concurrent requests.
func (w *DiscoveryRunWorker) requestFinished(ctx context.Context, newRLStatus bizsearch.RateLimitStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlightRequests > 0 {
		w.inFlightRequests--
	} else {
		w.inFlightRequests = 0
	}

	// If other goroutines are blocked in reserveRL, try to wake exactly one
	// without blocking this goroutine. If no one is waiting, the signal is
	// dropped.
	select {
	case w.requestFinishedChan <- struct{}{}:
	default:
	}

	// If the call didn't return any RL info, don't change our view.
	if newRLStatus.ResetAt.IsZero() {
		return
	}

	log := func() {
		logger.Debug(ctx, "received rate limit status",
			zap.Int("limit", newRLStatus.Limit),
			zap.Int("remaining", newRLStatus.Remaining),
			zap.Time("resetAt", newRLStatus.ResetAt),
			zap.Int("inFlight", w.inFlightRequests))
	}

	// First observation: adopt it unconditionally.
	if w.lastRLStatus == nil {
		w.lastRLStatus = &newRLStatus
		log()

		return
	}

	// If ResetAt changed, always adopt the new window.
	if !w.lastRLStatus.ResetAt.Equal(newRLStatus.ResetAt) {
		w.lastRLStatus = &newRLStatus
		log()

		return
	}

	// Otherwise prefer the lower Remaining to stay conservative under concurrency.
	if newRLStatus.Remaining < w.lastRLStatus.Remaining {
		w.lastRLStatus = &newRLStatus
		log()
	}
}

// reserveRL reserves one unit from the rate-limit budget or blocks until a
// unit becomes available. It implements the cooperative rate limiting
// described in the type-level comment:
//  1. On first use, initialize a synthetic RL state to allow a single probe
//     request to gather real headers.
//  2. Compute effective remaining budget; if we've passed ResetAt, Remaining
//     is treated as Limit.
//  3. If remaining - inFlightRequests > 0, increment inFlightRequests and
//     return.
//  4. Otherwise, wait until either ResetAt elapses or any in-flight request
//     completes (signaled via requestFinishedChan), then retry.
//
// If ctx is canceled while waiting, an error is returned.
func (w *DiscoveryRunWorker) reserveRL(ctx context.Context) error {
	for {
		w.mu.Lock()

		if w.lastRLStatus == nil {
			// At startup allow one request to get feedback from the API.
			w.lastRLStatus = &bizsearch.RateLimitStatus{
				Limit:     1,
				Remaining: 1,
				// Far-future reset so the first reservation doesn't
				// unblock due to a timer; we'll replace this with real headers soon.
				ResetAt: time.Now().Add(365 * 24 * time.Hour),
			}
		}

		remaining := w.lastRLStatus.Remaining
		// If the reset time has passed, treat the full limit as remaining.
		if time.Now().UTC().After(w.lastRLStatus.ResetAt) {
			remaining = w.lastRLStatus.Limit
		}

		// If budget remains once we account for in-flight requests, reserve and go.
		if remaining-w.inFlightRequests > 0 {
			logger.Debug(ctx, "reserved rate limit slot",
				zap.Int("remaining", remaining),
				zap.Int("limit", w.lastRLStatus.Limit),
				zap.Time("resetAt", w.lastRLStatus.ResetAt),
				zap.Int("inFlight", w.inFlightRequests))
			w.inFlightRequests++
			w.mu.Unlock()

			return nil
		}

		// Otherwise, wait for either the reset time (if in the future) or for
		// any request to finish, then retry.
		resetAt := w.lastRLStatus.ResetAt
		w.mu.Unlock()

		logger.Debug(ctx, "waiting for rate limit slot",
			zap.Int("remaining", remaining),
			zap.Time("resetAt", resetAt),
			zap.Int("inFlight", w.inFlightRequests))

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for rate limit: %w", ctx.Err())
		case <-w.requestFinishedChan:
			// loop to re-evaluate
			continue
		case <-time.After(time.Until(resetAt)):
			// Reset window elapsed; loop and try again.
			continue
		}
	}
}
