package postgres

import (
	"context"
	"fmt"
	"leadscout/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const (
	billingEventsTable = "billing_events"
)

// RecordBillingEvent inserts the event into the processed-event ledger. The
// primary key on event_id makes re-deliveries a no-op; false is returned when
// the event was already recorded.
func (p *PgSQL) RecordBillingEvent(ctx context.Context, record storage.BillingEventRecord) (bool, error) {
	rec := goqu.Record{
		"event_id":    record.EventID,
		"event_type":  record.EventType,
		"customer_id": record.CustomerID,
	}
	if !record.ProcessedAt.IsZero() {
		rec["processed_at"] = record.ProcessedAt
	}

	res, err := p.Builder.Insert(billingEventsTable).
		Rows(rec).
		OnConflict(goqu.DoNothing()).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not record billing event in pg: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read rows affected: %w", err)
	}

	return inserted > 0, nil
}
