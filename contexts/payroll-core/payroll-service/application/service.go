package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/payroll-core/payroll-service/domain/entities"
	domainerrors "paygrid/contexts/payroll-core/payroll-service/domain/errors"
	"paygrid/contexts/payroll-core/payroll-service/ports"
	"paygrid/internal/shared/outbox"
)

const (
	EventRunCreated          = "payroll.run_created"
	EventRunApproved         = "payroll.run_approved"
	EventRunDisbursed        = "payroll.run_disbursed"
	EventPayslipEmailRequest = "payslip.email_requested"
)

// Service coordinates the payroll run lifecycle and payslip queries.
type Service struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

// CreateRunCommand is transport-agnostic input for run creation.
type CreateRunCommand struct {
	Period    string
	CreatedBy uuid.UUID
}

func (s Service) ListRuns(ctx context.Context, tenantID uuid.UUID) ([]entities.PayrollRun, error) {
	runs, err := s.Repository.ListRuns(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Period > runs[j].Period })
	return runs, nil
}

func (s Service) GetRun(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error) {
	return s.Repository.GetRun(ctx, tenantID, runID)
}

// CreateRun opens a draft run for the given period. Period collisions within a
// tenant surface as ErrRunAlreadyExists via the store's unique constraint.
func (s Service) CreateRun(ctx context.Context, tenantID uuid.UUID, cmd CreateRunCommand) (entities.PayrollRun, error) {
	period, err := normalizePeriod(cmd.Period)
	if err != nil {
		return entities.PayrollRun{}, err
	}

	runID, err := s.newID(ctx)
	if err != nil {
		return entities.PayrollRun{}, err
	}

	now := s.now()
	run := entities.PayrollRun{
		RunID:     runID,
		TenantID:  tenantID,
		Period:    period,
		Status:    entities.RunStatusDraft,
		CreatedBy: cmd.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	message, err := s.outboxMessage(ctx, run, EventRunCreated)
	if err != nil {
		return entities.PayrollRun{}, err
	}
	created, err := s.Repository.CreateRun(ctx, run, message)
	if err != nil {
		s.logger().Error("payroll run create failed",
			"event", "payroll_run_create_failed",
			"module", "payroll-core/payroll-service",
			"layer", "application",
			"tenant_id", tenantID.String(),
			"period", period,
			"error", err.Error(),
		)
		return entities.PayrollRun{}, err
	}

	s.logger().Info("payroll run created",
		"event", "payroll_run_created",
		"module", "payroll-core/payroll-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"run_id", created.RunID.String(),
		"period", period,
	)
	return created, nil
}

// ApproveRun moves a draft run to approved.
func (s Service) ApproveRun(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error) {
	run, err := s.Repository.GetRun(ctx, tenantID, runID)
	if err != nil {
		return entities.PayrollRun{}, err
	}
	if run.Status != entities.RunStatusDraft {
		return entities.PayrollRun{}, domainerrors.ErrRunNotApprovable
	}

	now := s.now()
	run.Status = entities.RunStatusApproved
	run.UpdatedAt = now
	run.ApprovedAt = &now

	message, err := s.outboxMessage(ctx, run, EventRunApproved)
	if err != nil {
		return entities.PayrollRun{}, err
	}
	if err := s.Repository.UpdateRunStatus(ctx, run, message); err != nil {
		return entities.PayrollRun{}, err
	}

	s.logger().Info("payroll run approved",
		"event", "payroll_run_approved",
		"module", "payroll-core/payroll-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"run_id", run.RunID.String(),
		"period", run.Period,
	)
	return run, nil
}

// DisburseRun moves an approved run to disbursed and hands the disbursement
// event to the outbox for the payment collaborator.
func (s Service) DisburseRun(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error) {
	run, err := s.Repository.GetRun(ctx, tenantID, runID)
	if err != nil {
		return entities.PayrollRun{}, err
	}
	if run.Status != entities.RunStatusApproved {
		return entities.PayrollRun{}, domainerrors.ErrRunNotDisbursable
	}

	now := s.now()
	run.Status = entities.RunStatusDisbursed
	run.UpdatedAt = now
	run.DisbursedAt = &now

	message, err := s.outboxMessage(ctx, run, EventRunDisbursed)
	if err != nil {
		return entities.PayrollRun{}, err
	}
	if err := s.Repository.UpdateRunStatus(ctx, run, message); err != nil {
		return entities.PayrollRun{}, err
	}

	s.logger().Info("payroll run disbursed",
		"event", "payroll_run_disbursed",
		"module", "payroll-core/payroll-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"run_id", run.RunID.String(),
		"period", run.Period,
	)
	return run, nil
}

func (s Service) ListPayslips(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) ([]entities.Payslip, error) {
	payslips, err := s.Repository.ListPayslips(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	sort.Slice(payslips, func(i, j int) bool { return payslips[i].Period > payslips[j].Period })
	return payslips, nil
}

func (s Service) GetPayslip(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (entities.Payslip, error) {
	normalized, err := normalizePeriod(period)
	if err != nil {
		return entities.Payslip{}, err
	}
	return s.Repository.GetPayslip(ctx, tenantID, employeeID, normalized)
}

// RequestPayslipEmail enqueues a payslip.email_requested outbox event for the
// mail collaborator. The payslip must exist.
func (s Service) RequestPayslipEmail(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) error {
	payslip, err := s.GetPayslip(ctx, tenantID, employeeID, period)
	if err != nil {
		return err
	}

	outboxID, err := s.newID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]string{
		"payslipId":  payslip.PayslipID.String(),
		"employeeId": payslip.EmployeeID.String(),
		"period":     payslip.Period,
	})
	if err != nil {
		return err
	}
	message := outbox.Message{
		ID:        outboxID.String(),
		TenantID:  tenantID.String(),
		EventType: EventPayslipEmailRequest,
		Payload:   payload,
		Status:    outbox.StatusPending,
	}
	if err := s.Repository.SaveOutbox(ctx, message); err != nil {
		return err
	}

	s.logger().Info("payslip email requested",
		"event", "payslip_email_requested",
		"module", "payroll-core/payroll-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"payslip_id", payslip.PayslipID.String(),
		"period", payslip.Period,
	)
	return nil
}

func (s Service) newID(ctx context.Context) (uuid.UUID, error) {
	if s.IDGenerator == nil {
		return uuid.New(), nil
	}
	raw, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

func (s Service) outboxMessage(ctx context.Context, run entities.PayrollRun, eventType string) (outbox.Message, error) {
	outboxID, err := s.newID(ctx)
	if err != nil {
		return outbox.Message{}, err
	}
	payload, err := json.Marshal(map[string]string{
		"runId":  run.RunID.String(),
		"period": run.Period,
		"status": string(run.Status),
	})
	if err != nil {
		return outbox.Message{}, err
	}
	return outbox.Message{
		ID:        outboxID.String(),
		TenantID:  run.TenantID.String(),
		EventType: eventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
	}, nil
}

// normalizePeriod validates YYYY-MM and returns the trimmed form.
func normalizePeriod(period string) (string, error) {
	trimmed := strings.TrimSpace(period)
	if _, err := time.Parse("2006-01", trimmed); err != nil {
		return "", domainerrors.ErrInvalidPeriod
	}
	return trimmed, nil
}
