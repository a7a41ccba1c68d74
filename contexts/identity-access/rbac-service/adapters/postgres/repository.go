package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"paygrid/contexts/identity-access/rbac-service/domain/entities"
	domainerrors "paygrid/contexts/identity-access/rbac-service/domain/errors"
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

type roleModel struct {
	RoleID      string    `gorm:"column:role_id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;uniqueIndex:ux_roles_tenant_name"`
	Name        string    `gorm:"column:name;uniqueIndex:ux_roles_tenant_name"`
	Description string    `gorm:"column:description"`
	Permissions []string  `gorm:"column:permissions;type:text[]"`
	System      bool      `gorm:"column:is_system"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (roleModel) TableName() string { return "rbac_roles" }

type policyModel struct {
	PolicyID   string    `gorm:"column:policy_id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id"`
	Name       string    `gorm:"column:name"`
	Permission string    `gorm:"column:permission"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (policyModel) TableName() string { return "rbac_policies" }

type userModel struct {
	UserID      string    `gorm:"column:user_id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id"`
	Email       string    `gorm:"column:email"`
	DisplayName string    `gorm:"column:display_name"`
	Roles       []string  `gorm:"column:roles;type:text[]"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "user_accounts" }

func (r *Repository) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]entities.Role, error) {
	var rows []roleModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) GetRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) (entities.Role, error) {
	var row roleModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("role_id = ?", roleID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Role{}, domainerrors.ErrRoleNotFound
		}
		return entities.Role{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateRole(ctx context.Context, role entities.Role) error {
	row := roleModelFromEntity(role)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRoleAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateRole(ctx context.Context, role entities.Role) error {
	result := r.db.WithContext(ctx).
		Model(&roleModel{}).
		Scopes(db.TenantScope(role.TenantID)).
		Where("role_id = ?", role.RoleID.String()).
		Updates(map[string]any{
			"name":        role.Name,
			"description": role.Description,
			"permissions": role.Permissions,
			"updated_at":  role.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrRoleAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoleNotFound
	}
	return nil
}

func (r *Repository) DeleteRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("role_id = ?", roleID.String()).
		Delete(&roleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoleNotFound
	}
	return nil
}

func (r *Repository) ListPolicies(ctx context.Context, tenantID uuid.UUID) ([]entities.PolicyBinding, error) {
	var rows []policyModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("name ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.PolicyBinding, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) UpdatePolicy(ctx context.Context, binding entities.PolicyBinding) (entities.PolicyBinding, error) {
	result := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Scopes(db.TenantScope(binding.TenantID)).
		Where("policy_id = ?", binding.PolicyID.String()).
		Updates(map[string]any{
			"permission": binding.Permission,
			"updated_at": binding.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.PolicyBinding{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.PolicyBinding{}, domainerrors.ErrPolicyNotFound
	}

	var row policyModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(binding.TenantID)).
		Where("policy_id = ?", binding.PolicyID.String()).
		First(&row).
		Error
	if err != nil {
		return entities.PolicyBinding{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUser(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID) (entities.UserAccount, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("user_id = ?", userID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UserAccount{}, domainerrors.ErrUserNotFound
		}
		return entities.UserAccount{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]entities.UserAccount, error) {
	var rows []userModel
	err := r.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Order("email ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.UserAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) SetUserRoles(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, roles []string, updatedAt time.Time) (entities.UserAccount, error) {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Scopes(db.TenantScope(tenantID)).
		Where("user_id = ?", userID.String()).
		Updates(map[string]any{
			"roles":      roles,
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.UserAccount{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	return r.GetUser(ctx, tenantID, userID)
}

func (m roleModel) toEntity() entities.Role {
	roleID, _ := uuid.Parse(m.RoleID)
	tenantID, _ := uuid.Parse(m.TenantID)
	return entities.Role{
		RoleID:      roleID,
		TenantID:    tenantID,
		Name:        m.Name,
		Description: m.Description,
		Permissions: append([]string(nil), m.Permissions...),
		System:      m.System,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func roleModelFromEntity(role entities.Role) roleModel {
	return roleModel{
		RoleID:      role.RoleID.String(),
		TenantID:    role.TenantID.String(),
		Name:        strings.TrimSpace(role.Name),
		Description: role.Description,
		Permissions: append([]string(nil), role.Permissions...),
		System:      role.System,
		CreatedAt:   role.CreatedAt.UTC(),
		UpdatedAt:   role.UpdatedAt.UTC(),
	}
}

func (m policyModel) toEntity() entities.PolicyBinding {
	policyID, _ := uuid.Parse(m.PolicyID)
	tenantID, _ := uuid.Parse(m.TenantID)
	return entities.PolicyBinding{
		PolicyID:   policyID,
		TenantID:   tenantID,
		Name:       m.Name,
		Permission: m.Permission,
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func (m userModel) toEntity() entities.UserAccount {
	userID, _ := uuid.Parse(m.UserID)
	tenantID, _ := uuid.Parse(m.TenantID)
	return entities.UserAccount{
		UserID:      userID,
		TenantID:    tenantID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Roles:       append([]string(nil), m.Roles...),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
