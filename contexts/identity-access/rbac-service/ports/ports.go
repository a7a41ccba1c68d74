package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/identity-access/rbac-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new roles and policies.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Repository is the tenant-scoped persistence boundary for RBAC state.
// Every method filters by tenant; there is no unscoped path.
type Repository interface {
	ListRoles(ctx context.Context, tenantID uuid.UUID) ([]entities.Role, error)
	GetRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) (entities.Role, error)
	CreateRole(ctx context.Context, role entities.Role) error
	UpdateRole(ctx context.Context, role entities.Role) error
	DeleteRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) error

	ListPolicies(ctx context.Context, tenantID uuid.UUID) ([]entities.PolicyBinding, error)
	UpdatePolicy(ctx context.Context, binding entities.PolicyBinding) (entities.PolicyBinding, error)

	GetUser(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID) (entities.UserAccount, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID) ([]entities.UserAccount, error)
	SetUserRoles(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, roles []string, updatedAt time.Time) (entities.UserAccount, error)
}
