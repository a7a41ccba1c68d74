package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/payroll-core/payroll-service/domain/entities"
	"paygrid/internal/shared/events"
	"paygrid/internal/shared/outbox"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for runs and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Repository is the tenant-scoped persistence boundary for runs and payslips.
type Repository interface {
	ListRuns(ctx context.Context, tenantID uuid.UUID) ([]entities.PayrollRun, error)
	GetRun(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error)
	CreateRun(ctx context.Context, run entities.PayrollRun, message outbox.Message) (entities.PayrollRun, error)
	UpdateRunStatus(ctx context.Context, run entities.PayrollRun, message outbox.Message) error
	ListPayslips(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) ([]entities.Payslip, error)
	GetPayslip(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (entities.Payslip, error)
	SaveOutbox(ctx context.Context, message outbox.Message) error
}

// OutboxRepository is the worker-facing slice of the store.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	MarkOutboxFailed(ctx context.Context, outboxID string, failedAt time.Time) error
}

// EventPublisher delivers relayed events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
