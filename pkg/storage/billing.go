package storage

import (
	"context"
	"time"
)

// BillingEventRecord is one entry in the processed-event ledger used to
// deduplicate webhook deliveries. The ledger is separate from the plan-state
// table so duplicate detection and state mutation commit together or not at all.
type BillingEventRecord struct {
	// EventID is the processor's idempotency key for the event.
	EventID string
	// EventType is the processor's event type string.
	EventType string
	// CustomerID is the external customer the event refers to, when present.
	CustomerID string
	// ProcessedAt is when the event was applied.
	ProcessedAt time.Time
}

// BillingEventStorage defines the processed-event ledger operations.
type BillingEventStorage interface {
	// RecordBillingEvent inserts the event into the ledger. It reports false
	// without error when the event ID was already recorded, which callers must
	// treat as a duplicate delivery.
	RecordBillingEvent(ctx context.Context, record BillingEventRecord) (bool, error)
}
