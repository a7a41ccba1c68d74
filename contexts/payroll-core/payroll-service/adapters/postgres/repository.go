package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"paygrid/contexts/payroll-core/payroll-service/domain/entities"
	domainerrors "paygrid/contexts/payroll-core/payroll-service/domain/errors"
	"paygrid/internal/platform/db"
	"paygrid/internal/shared/outbox"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(gormDB *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: gormDB, logger: logger}
}

type runModel struct {
	RunID       string     `gorm:"column:run_id;primaryKey"`
	TenantID    string     `gorm:"column:tenant_id;uniqueIndex:ux_runs_tenant_period"`
	Period      string     `gorm:"column:period;uniqueIndex:ux_runs_tenant_period"`
	Status      string     `gorm:"column:status"`
	CreatedBy   string     `gorm:"column:created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	ApprovedAt  *time.Time `gorm:"column:approved_at"`
	DisbursedAt *time.Time `gorm:"column:disbursed_at"`
}

func (runModel) TableName() string { return "payroll_runs" }

type payslipModel struct {
	PayslipID  string    `gorm:"column:payslip_id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id;index:ix_payslips_tenant"`
	EmployeeID string    `gorm:"column:employee_id"`
	RunID      string    `gorm:"column:run_id"`
	Period     string    `gorm:"column:period"`
	Gross      int64     `gorm:"column:gross_minor"`
	Net        int64     `gorm:"column:net_minor"`
	Currency   string    `gorm:"column:currency"`
	IssuedAt   time.Time `gorm:"column:issued_at"`
}

func (payslipModel) TableName() string { return "payslips" }

type outboxModel struct {
	OutboxID   string     `gorm:"column:outbox_id;primaryKey"`
	TenantID   string     `gorm:"column:tenant_id"`
	EventType  string     `gorm:"column:event_type"`
	Payload    []byte     `gorm:"column:payload"`
	Status     string     `gorm:"column:status;index:ix_outbox_status"`
	RetryCount int        `gorm:"column:retry_count"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  *time.Time `gorm:"column:updated_at"`
}

func (outboxModel) TableName() string { return "payroll_outbox" }

func (r *Repository) ListRuns(ctx context.Context, tenantID uuid.UUID) ([]entities.PayrollRun, error) {
	var rows []runModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("period DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.PayrollRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) GetRun(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (entities.PayrollRun, error) {
	var row runModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("run_id = ?", runID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PayrollRun{}, domainerrors.ErrRunNotFound
		}
		return entities.PayrollRun{}, err
	}
	return row.toEntity(), nil
}

// CreateRun persists the run and its outbox row in one transaction so the
// relay never observes a run without its event.
func (r *Repository) CreateRun(ctx context.Context, run entities.PayrollRun, message outbox.Message) (entities.PayrollRun, error) {
	row := runModelFromEntity(run)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRunAlreadyExists
			}
			return err
		}
		outboxRow := outboxModelFromMessage(message, run.CreatedAt)
		return tx.Create(&outboxRow).Error
	})
	if err != nil {
		return entities.PayrollRun{}, err
	}
	return run, nil
}

func (r *Repository) UpdateRunStatus(ctx context.Context, run entities.PayrollRun, message outbox.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&runModel{}).
			Scopes(db.TenantScope(run.TenantID)).
			Where("run_id = ?", run.RunID.String()).
			Updates(map[string]any{
				"status":       string(run.Status),
				"updated_at":   run.UpdatedAt.UTC(),
				"approved_at":  run.ApprovedAt,
				"disbursed_at": run.DisbursedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRunNotFound
		}
		outboxRow := outboxModelFromMessage(message, run.UpdatedAt)
		return tx.Create(&outboxRow).Error
	})
}

func (r *Repository) ListPayslips(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) ([]entities.Payslip, error) {
	var rows []payslipModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("employee_id = ?", employeeID.String()).
		Order("period DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Payslip, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) GetPayslip(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (entities.Payslip, error) {
	var row payslipModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("employee_id = ? AND period = ?", employeeID.String(), period).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payslip{}, domainerrors.ErrPayslipNotFound
		}
		return entities.Payslip{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveOutbox(ctx context.Context, message outbox.Message) error {
	row := outboxModelFromMessage(message, time.Now().UTC())
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, outbox.Message{
			ID:         row.OutboxID,
			TenantID:   row.TenantID,
			EventType:  row.EventType,
			Payload:    row.Payload,
			Status:     row.Status,
			RetryCount: row.RetryCount,
		})
	}
	return out, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":     outbox.StatusPublished,
			"updated_at": publishedAt.UTC(),
		}).
		Error
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, outboxID string, failedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":      outbox.StatusFailed,
			"updated_at":  failedAt.UTC(),
			"retry_count": gorm.Expr("retry_count + 1"),
		}).
		Error
}

func (m runModel) toEntity() entities.PayrollRun {
	runID, _ := uuid.Parse(m.RunID)
	tenantID, _ := uuid.Parse(m.TenantID)
	createdBy, _ := uuid.Parse(m.CreatedBy)
	return entities.PayrollRun{
		RunID:       runID,
		TenantID:    tenantID,
		Period:      m.Period,
		Status:      entities.RunStatus(m.Status),
		CreatedBy:   createdBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		ApprovedAt:  m.ApprovedAt,
		DisbursedAt: m.DisbursedAt,
	}
}

func runModelFromEntity(run entities.PayrollRun) runModel {
	return runModel{
		RunID:       run.RunID.String(),
		TenantID:    run.TenantID.String(),
		Period:      run.Period,
		Status:      string(run.Status),
		CreatedBy:   run.CreatedBy.String(),
		CreatedAt:   run.CreatedAt.UTC(),
		UpdatedAt:   run.UpdatedAt.UTC(),
		ApprovedAt:  run.ApprovedAt,
		DisbursedAt: run.DisbursedAt,
	}
}

func (m payslipModel) toEntity() entities.Payslip {
	payslipID, _ := uuid.Parse(m.PayslipID)
	tenantID, _ := uuid.Parse(m.TenantID)
	employeeID, _ := uuid.Parse(m.EmployeeID)
	runID, _ := uuid.Parse(m.RunID)
	return entities.Payslip{
		PayslipID:  payslipID,
		TenantID:   tenantID,
		EmployeeID: employeeID,
		RunID:      runID,
		Period:     m.Period,
		Gross:      m.Gross,
		Net:        m.Net,
		Currency:   m.Currency,
		IssuedAt:   m.IssuedAt.UTC(),
	}
}

func outboxModelFromMessage(message outbox.Message, createdAt time.Time) outboxModel {
	return outboxModel{
		OutboxID:   message.ID,
		TenantID:   message.TenantID,
		EventType:  message.EventType,
		Payload:    message.Payload,
		Status:     message.Status,
		RetryCount: message.RetryCount,
		CreatedAt:  createdAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
