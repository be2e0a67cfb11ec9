package billing

import (
	"encoding/json"
	"leadscout/pkg/serrors"
)

// Event types the reconciler reacts to. Anything else is acknowledged
// without effect so the processor does not keep retrying.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)

// Subscription statuses that map to the pro tier.
const (
	statusActive   = "active"
	statusTrialing = "trialing"
)

// Event is one inbound billing notification. Every event asserts a snapshot
// of the subscription state in its payload, never a delta, so out-of-order
// delivery converges under last-write-wins.
type Event struct {
	// ID is the processor's idempotency key for the event.
	ID string `json:"id"`
	// Type is the event type string, e.g. "customer.subscription.updated".
	Type string `json:"type"`
	// Data wraps the object the event describes.
	Data struct {
		Object struct {
			// ID is the subscription or checkout-session identifier.
			ID string `json:"id"`
			// Customer is the processor's customer identifier.
			Customer string `json:"customer"`
			// Status is the subscription status snapshot.
			Status string `json:"status"`
			// Subscription carries the subscription ID on checkout sessions.
			Subscription string `json:"subscription"`
			// ClientReferenceID carries our user ID on checkout sessions.
			ClientReferenceID string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified payload. Events without an ID or type are
// malformed and rejected; they are never recorded in the idempotency ledger.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode billing event")
	}
	if ev.ID == "" || ev.Type == "" {
		return Event{}, serrors.With(serrors.ErrBadRequest, "billing event missing id or type")
	}

	return ev, nil
}

// subscriptionID returns the subscription reference of the event, wherever
// the payload carries it.
func (e Event) subscriptionID() string {
	if e.Type == EventCheckoutCompleted {
		return e.Data.Object.Subscription
	}

	return e.Data.Object.ID
}

// proStatus reports whether the asserted subscription status maps to pro.
func (e Event) proStatus() bool {
	return e.Data.Object.Status == statusActive || e.Data.Object.Status == statusTrialing
}
