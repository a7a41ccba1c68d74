package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/payroll-core/payroll-service/ports"
	"paygrid/internal/shared/events"
)

// OutboxRelay drains pending payroll outbox rows into the message bus.
// Rows that fail to publish are marked failed and retried on a later pass
// by operator action; the relay itself never blocks the loop on one row.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("payroll outbox list failed",
			"event", "payroll_outbox_list_failed",
			"module", "payroll-core/payroll-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		envelope := events.Envelope{
			EventID:        uuid.NewString(),
			EventType:      row.EventType,
			SourceService:  "payroll-service",
			TenantID:       row.TenantID,
			OccurredAtUTC:  now,
			CorrelationID:  row.ID,
			EntityType:     "payroll",
			EntityID:       row.ID,
			PayloadVersion: 1,
			Payload:        json.RawMessage(row.Payload),
		}
		if err := r.Publisher.Publish(ctx, row.EventType, envelope); err != nil {
			logger.Error("payroll outbox publish failed",
				"event", "payroll_outbox_publish_failed",
				"module", "payroll-core/payroll-service",
				"layer", "worker",
				"outbox_id", row.ID,
				"event_type", row.EventType,
				"error", err.Error(),
			)
			if markErr := r.Outbox.MarkOutboxFailed(ctx, row.ID, now); markErr != nil {
				return markErr
			}
			continue
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.ID, now); err != nil {
			return err
		}
	}
	return nil
}
