package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paygrid/contexts/workforce-core/org-service/domain/entities"
	domainerrors "paygrid/contexts/workforce-core/org-service/domain/errors"
	"paygrid/internal/platform/db"
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

type employeeModel struct {
	EmployeeID   string    `gorm:"column:employee_id;primaryKey"`
	TenantID     string    `gorm:"column:tenant_id;index:ix_employees_tenant"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email"`
	Title        string    `gorm:"column:title"`
	Department   string    `gorm:"column:department"`
	ManagerID    *string   `gorm:"column:manager_id"`
	PortalAccess bool      `gorm:"column:portal_access"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (employeeModel) TableName() string { return "employees" }

func (r *Repository) ListEmployees(ctx context.Context, tenantID uuid.UUID, offset int, limit int) ([]entities.Employee, int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Scopes(db.TenantScope(tenantID)).
		Count(&total).
		Error
	if err != nil {
		return nil, 0, err
	}

	var rows []employeeModel
	err = r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("last_name ASC, first_name ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return toEntities(rows), int(total), nil
}

func (r *Repository) ListAllEmployees(ctx context.Context, tenantID uuid.UUID) ([]entities.Employee, error) {
	var rows []employeeModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("last_name ASC, first_name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *Repository) GetEmployee(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (entities.Employee, error) {
	var row employeeModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("employee_id = ?", employeeID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Employee{}, domainerrors.ErrEmployeeNotFound
		}
		return entities.Employee{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDirectReports(ctx context.Context, tenantID uuid.UUID, managerID uuid.UUID) ([]entities.Employee, error) {
	var rows []employeeModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("manager_id = ?", managerID.String()).
		Order("last_name ASC, first_name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *Repository) SetPortalAccess(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, enabled bool, updatedAt time.Time) (entities.Employee, error) {
	result := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Scopes(db.TenantScope(tenantID)).
		Where("employee_id = ?", employeeID.String()).
		Updates(map[string]any{
			"portal_access": enabled,
			"updated_at":    updatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.Employee{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	return r.GetEmployee(ctx, tenantID, employeeID)
}

func (m employeeModel) toEntity() entities.Employee {
	employeeID, _ := uuid.Parse(m.EmployeeID)
	tenantID, _ := uuid.Parse(m.TenantID)
	var managerID *uuid.UUID
	if m.ManagerID != nil {
		if parsed, err := uuid.Parse(*m.ManagerID); err == nil {
			managerID = &parsed
		}
	}
	return entities.Employee{
		EmployeeID:   employeeID,
		TenantID:     tenantID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Title:        m.Title,
		Department:   m.Department,
		ManagerID:    managerID,
		PortalAccess: m.PortalAccess,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func toEntities(rows []employeeModel) []entities.Employee {
	out := make([]entities.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out
}
