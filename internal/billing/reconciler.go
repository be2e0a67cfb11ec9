// Package billing reconciles the per-user plan state against asynchronous,
// possibly duplicated, possibly out-of-order events from the external payment
// processor. Duplicate detection and plan mutation commit in one transaction.
package billing

import (
	"context"
	"fmt"
	"leadscout/internal/config"
	"leadscout/internal/quota"
	"leadscout/pkg/domain"
	"leadscout/pkg/logger"
	"leadscout/pkg/metrics"
	"leadscout/pkg/storage"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome is the terminal result of processing one billing event.
type Outcome string

const (
	// OutcomeApplied means the event was recorded and its state transition applied.
	OutcomeApplied Outcome = "APPLIED"
	// OutcomeDuplicate means the event ID was already processed; nothing changed.
	OutcomeDuplicate Outcome = "DUPLICATE"
	// OutcomeUnknownCustomer means no account matches the event's customer;
	// the event is acknowledged but produces no mutation.
	OutcomeUnknownCustomer Outcome = "UNKNOWN_CUSTOMER"
)

// Options configure webhook verification.
type Options struct {
	// SigningSecret is the shared secret used to verify event signatures.
	SigningSecret string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SigningSecret: cfg.Billing.SigningSecret,
	}
}

// Reconciler is the billing event processor.
type Reconciler struct {
	options Options
	storage storage.Storage
	guard   quota.Guard
}

// ProcessEvent verifies, deduplicates and applies one raw billing event.
// The signature is checked against the raw body before any field is trusted.
// The idempotency record and the plan mutation commit atomically: a storage
// failure leaves the ledger untouched so the processor's retry is reattempted.
func (r *Reconciler) ProcessEvent(ctx context.Context, body []byte, signature string) (Outcome, error) {
	if err := VerifySignature(r.options.SigningSecret, body, signature); err != nil {
		return "", err
	}

	ev, err := ParseEvent(body)
	if err != nil {
		return "", err
	}

	outcome := OutcomeApplied
	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		inserted, err := tx.RecordBillingEvent(ctx, storage.BillingEventRecord{
			EventID:     ev.ID,
			EventType:   ev.Type,
			CustomerID:  ev.Data.Object.Customer,
			ProcessedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("could not record billing event: %w", err)
		}
		if !inserted {
			outcome = OutcomeDuplicate

			return nil
		}

		outcome, err = r.apply(ctx, tx, ev)

		return err
	}); err != nil {
		return "", err
	}

	metrics.RecordBillingEvent(string(outcome))
	logger.Info(ctx, "billing event processed",
		zap.String("eventId", ev.ID),
		zap.String("eventType", ev.Type),
		zap.String("outcome", string(outcome)))

	return outcome, nil
}

// apply dispatches one first-seen event to its state transition.
func (r *Reconciler) apply(ctx context.Context, tx storage.AllStorage, ev Event) (Outcome, error) {
	switch ev.Type {
	case EventCheckoutCompleted:
		return r.applyCheckout(ctx, tx, ev)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return r.applySubscriptionSnapshot(ctx, tx, ev)
	case EventSubscriptionDeleted:
		return r.applySubscriptionDeleted(ctx, tx, ev)
	case EventPaymentFailed:
		return r.applyPaymentFailed(ctx, tx, ev)
	default:
		// acknowledge unhandled types so the processor stops re-sending
		logger.Debug(ctx, "ignoring unhandled billing event type", zap.String("eventType", ev.Type))

		return OutcomeApplied, nil
	}
}

// applyCheckout links the processor's customer to our user via the checkout
// session's client reference and switches the user to pro. The plan record is
// provisioned first for users who subscribe before their first discovery.
func (r *Reconciler) applyCheckout(ctx context.Context, tx storage.AllStorage, ev Event) (Outcome, error) {
	uid, err := uuid.Parse(ev.Data.Object.ClientReferenceID)
	if err != nil {
		logger.Warn(ctx, "checkout event without a usable client reference",
			zap.String("eventId", ev.ID))

		return OutcomeUnknownCustomer, nil
	}
	userID := domain.UserID(uid)

	if _, err := r.guard.CurrentPlan(ctx, tx, userID); err != nil {
		return "", err
	}

	customer := ev.Data.Object.Customer
	updates := storage.PlanUpdates{
		Status:            domain.PlanPro,
		DiscoveryLimit:    r.guard.LimitFor(domain.PlanPro),
		BillingCustomerID: &customer,
	}
	if sub := ev.subscriptionID(); sub != "" {
		updates.BillingSubscriptionID = &sub
	}

	if _, err := tx.UpdatePlanByUserID(ctx, userID, updates); err != nil {
		return "", fmt.Errorf("could not apply checkout: %w", err)
	}

	return OutcomeApplied, nil
}

// applySubscriptionSnapshot applies a created/updated event. The event's own
// payload fully determines the resulting tier; usageResetDate is untouched.
func (r *Reconciler) applySubscriptionSnapshot(ctx context.Context,
	tx storage.AllStorage,
	ev Event) (Outcome, error) {
	plan, err := tx.PlanByBillingCustomerID(ctx, ev.Data.Object.Customer)
	if err != nil {
		return "", fmt.Errorf("could not look up customer: %w", err)
	}
	if plan == nil {
		return OutcomeUnknownCustomer, nil
	}

	status := domain.PlanFree
	if ev.proStatus() {
		status = domain.PlanPro
	}
	sub := ev.subscriptionID()

	if _, err := tx.UpdatePlanByUserID(ctx, plan.UserID, storage.PlanUpdates{
		Status:                status,
		DiscoveryLimit:        r.guard.LimitFor(status),
		BillingSubscriptionID: &sub,
	}); err != nil {
		return "", fmt.Errorf("could not apply subscription snapshot: %w", err)
	}

	return OutcomeApplied, nil
}

// applySubscriptionDeleted downgrades to free, clears the subscription
// reference and zeroes the monthly usage counter.
func (r *Reconciler) applySubscriptionDeleted(ctx context.Context,
	tx storage.AllStorage,
	ev Event) (Outcome, error) {
	plan, err := tx.PlanByBillingCustomerID(ctx, ev.Data.Object.Customer)
	if err != nil {
		return "", fmt.Errorf("could not look up customer: %w", err)
	}
	if plan == nil {
		return OutcomeUnknownCustomer, nil
	}

	empty := ""
	if _, err := tx.UpdatePlanByUserID(ctx, plan.UserID, storage.PlanUpdates{
		Status:                domain.PlanFree,
		DiscoveryLimit:        r.guard.LimitFor(domain.PlanFree),
		BillingSubscriptionID: &empty,
		ResetUsage:            true,
	}); err != nil {
		return "", fmt.Errorf("could not apply subscription delete: %w", err)
	}

	return OutcomeApplied, nil
}

// applyPaymentFailed records the failure but performs no downgrade; the
// processor's dunning flow decides whether the subscription eventually ends.
func (r *Reconciler) applyPaymentFailed(ctx context.Context,
	tx storage.AllStorage,
	ev Event) (Outcome, error) {
	plan, err := tx.PlanByBillingCustomerID(ctx, ev.Data.Object.Customer)
	if err != nil {
		return "", fmt.Errorf("could not look up customer: %w", err)
	}
	if plan == nil {
		return OutcomeUnknownCustomer, nil
	}

	logger.Warn(ctx, "payment failed for customer, keeping plan during grace period",
		zap.String("customerId", ev.Data.Object.Customer),
		zap.String("planStatus", string(plan.Status)))

	return OutcomeApplied, nil
}

// New creates a Reconciler backed by the provided storage and quota guard.
func New(storage storage.Storage, guard quota.Guard, options Options) *Reconciler {
	return &Reconciler{
		options: options,
		storage: storage,
		guard:   guard,
	}
}
