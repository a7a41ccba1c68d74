package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/workforce-core/org-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Repository is the tenant-scoped persistence boundary for the directory.
type Repository interface {
	ListEmployees(ctx context.Context, tenantID uuid.UUID, offset int, limit int) ([]entities.Employee, int, error)
	ListAllEmployees(ctx context.Context, tenantID uuid.UUID) ([]entities.Employee, error)
	GetEmployee(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (entities.Employee, error)
	ListDirectReports(ctx context.Context, tenantID uuid.UUID, managerID uuid.UUID) ([]entities.Employee, error)
	SetPortalAccess(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, enabled bool, updatedAt time.Time) (entities.Employee, error)
}
