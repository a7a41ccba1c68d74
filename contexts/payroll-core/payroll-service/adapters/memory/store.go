package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/payroll-core/payroll-service/domain/entities"
	domainerrors "paygrid/contexts/payroll-core/payroll-service/domain/errors"
	"paygrid/internal/shared/outbox"
)

// Store is an in-memory payroll adapter for tests and local wiring.
type Store struct {
	mu       sync.RWMutex
	runs     map[uuid.UUID]entities.PayrollRun
	payslips map[uuid.UUID]entities.Payslip
	outbox   []outbox.Message

	nowOverride func() time.Time
}

func NewStore() *Store {
	return &Store{
		runs:     make(map[uuid.UUID]entities.PayrollRun),
		payslips: make(map[uuid.UUID]entities.Payslip),
	}
}

// SetNow overrides the clock for deterministic tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowOverride = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	override := s.nowOverride
	s.mu.RUnlock()
	if override != nil {
		return override()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// SeedRun inserts a run directly. Test helper.
func (s *Store) SeedRun(run entities.PayrollRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
}

// SeedPayslip inserts a payslip directly. Test helper.
func (s *Store) SeedPayslip(payslip entities.Payslip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payslips[payslip.PayslipID] = payslip
}

// OutboxMessages returns a copy of the accumulated outbox. Test helper.
func (s *Store) OutboxMessages() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]outbox.Message(nil), s.outbox...)
}

func (s *Store) ListRuns(_ context.Context, tenantID uuid.UUID) ([]entities.PayrollRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.PayrollRun, 0)
	for _, run := range s.runs {
		if run.TenantID == tenantID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (s *Store) GetRun(_ context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok || run.TenantID != tenantID {
		return entities.PayrollRun{}, domainerrors.ErrRunNotFound
	}
	return run, nil
}

func (s *Store) CreateRun(_ context.Context, run entities.PayrollRun, message outbox.Message) (entities.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.runs {
		if existing.TenantID == run.TenantID && existing.Period == run.Period {
			return entities.PayrollRun{}, domainerrors.ErrRunAlreadyExists
		}
	}
	s.runs[run.RunID] = run
	s.outbox = append(s.outbox, message)
	return run, nil
}

func (s *Store) UpdateRunStatus(_ context.Context, run entities.PayrollRun, message outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[run.RunID]
	if !ok || existing.TenantID != run.TenantID {
		return domainerrors.ErrRunNotFound
	}
	s.runs[run.RunID] = run
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *Store) ListPayslips(_ context.Context, tenantID uuid.UUID, employeeID uuid.UUID) ([]entities.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Payslip, 0)
	for _, payslip := range s.payslips {
		if payslip.TenantID == tenantID && payslip.EmployeeID == employeeID {
			out = append(out, payslip)
		}
	}
	return out, nil
}

func (s *Store) GetPayslip(_ context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (entities.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, payslip := range s.payslips {
		if payslip.TenantID == tenantID && payslip.EmployeeID == employeeID && payslip.Period == period {
			return payslip, nil
		}
	}
	return entities.Payslip{}, domainerrors.ErrPayslipNotFound
}

func (s *Store) SaveOutbox(_ context.Context, message outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]outbox.Message, 0)
	for _, message := range s.outbox {
		if message.Status != outbox.StatusPending {
			continue
		}
		out = append(out, message)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	return s.setOutboxStatus(outboxID, outbox.StatusPublished)
}

func (s *Store) MarkOutboxFailed(_ context.Context, outboxID string, _ time.Time) error {
	return s.setOutboxStatus(outboxID, outbox.StatusFailed)
}

func (s *Store) setOutboxStatus(outboxID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].ID == outboxID {
			s.outbox[i].Status = status
			if status == outbox.StatusFailed {
				s.outbox[i].RetryCount++
			}
			return nil
		}
	}
	return nil
}
