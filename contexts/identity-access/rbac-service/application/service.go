package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/identity-access/rbac-service/domain/entities"
	domainerrors "paygrid/contexts/identity-access/rbac-service/domain/errors"
	"paygrid/contexts/identity-access/rbac-service/ports"
	"paygrid/contexts/identity-access/tenancy-service/domain/services"
	tenancyports "paygrid/contexts/identity-access/tenancy-service/ports"
)

// Service coordinates tenant-scoped RBAC administration.
type Service struct {
	Repository      ports.Repository
	PermissionCache tenancyports.PermissionCache
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	CacheTTL        time.Duration
	Logger          *slog.Logger
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

func (s Service) cacheTTL() time.Duration {
	if s.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return s.CacheTTL
}

// CreateRoleCommand is transport-agnostic input for role creation.
type CreateRoleCommand struct {
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleCommand carries mutable role fields.
type UpdateRoleCommand struct {
	Name        string
	Description string
	Permissions []string
}

func (s Service) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]entities.Role, error) {
	return s.Repository.ListRoles(ctx, tenantID)
}

func (s Service) CreateRole(ctx context.Context, tenantID uuid.UUID, cmd CreateRoleCommand) (entities.Role, error) {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" {
		return entities.Role{}, domainerrors.ErrRoleNameRequired
	}
	permissions, err := normalizePermissions(cmd.Permissions)
	if err != nil {
		return entities.Role{}, err
	}

	id, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Role{}, err
	}
	roleID, err := uuid.Parse(id)
	if err != nil {
		return entities.Role{}, err
	}

	now := s.now()
	role := entities.Role{
		RoleID:      roleID,
		TenantID:    tenantID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repository.CreateRole(ctx, role); err != nil {
		s.logger().Error("role create failed",
			"event", "rbac_role_create_failed",
			"module", "identity-access/rbac-service",
			"layer", "application",
			"tenant_id", tenantID.String(),
			"role_name", name,
			"error", err.Error(),
		)
		return entities.Role{}, err
	}

	s.logger().Info("role created",
		"event", "rbac_role_created",
		"module", "identity-access/rbac-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"role_id", role.RoleID.String(),
		"role_name", name,
	)
	return role, nil
}

func (s Service) UpdateRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID, cmd UpdateRoleCommand) (entities.Role, error) {
	role, err := s.Repository.GetRole(ctx, tenantID, roleID)
	if err != nil {
		return entities.Role{}, err
	}
	if role.System {
		return entities.Role{}, domainerrors.ErrSystemRoleImmutable
	}

	if name := strings.ToLower(strings.TrimSpace(cmd.Name)); name != "" {
		role.Name = name
	}
	if strings.TrimSpace(cmd.Description) != "" {
		role.Description = strings.TrimSpace(cmd.Description)
	}
	if cmd.Permissions != nil {
		permissions, err := normalizePermissions(cmd.Permissions)
		if err != nil {
			return entities.Role{}, err
		}
		role.Permissions = permissions
	}
	role.UpdatedAt = s.now()

	if err := s.Repository.UpdateRole(ctx, role); err != nil {
		return entities.Role{}, err
	}

	s.logger().Info("role updated",
		"event", "rbac_role_updated",
		"module", "identity-access/rbac-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"role_id", roleID.String(),
	)
	return role, nil
}

func (s Service) DeleteRole(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) error {
	role, err := s.Repository.GetRole(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if role.System {
		return domainerrors.ErrSystemRoleImmutable
	}
	if err := s.Repository.DeleteRole(ctx, tenantID, roleID); err != nil {
		return err
	}

	s.logger().Info("role deleted",
		"event", "rbac_role_deleted",
		"module", "identity-access/rbac-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"role_id", roleID.String(),
		"role_name", role.Name,
	)
	return nil
}

func (s Service) ListPolicies(ctx context.Context, tenantID uuid.UUID) ([]entities.PolicyBinding, error) {
	return s.Repository.ListPolicies(ctx, tenantID)
}

func (s Service) UpdatePolicy(ctx context.Context, tenantID uuid.UUID, policyID uuid.UUID, permission string) (entities.PolicyBinding, error) {
	normalized := strings.ToLower(strings.TrimSpace(permission))
	if normalized == "" {
		return entities.PolicyBinding{}, domainerrors.ErrInvalidPermission
	}
	binding, err := s.Repository.UpdatePolicy(ctx, entities.PolicyBinding{
		PolicyID:   policyID,
		TenantID:   tenantID,
		Permission: normalized,
		UpdatedAt:  s.now(),
	})
	if err != nil {
		return entities.PolicyBinding{}, err
	}

	s.logger().Info("policy updated",
		"event", "rbac_policy_updated",
		"module", "identity-access/rbac-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"policy_id", policyID.String(),
		"permission", normalized,
	)
	return binding, nil
}

// SetUserRoles replaces a user's role assignments. Every requested role must
// be a statically mapped role or a tenant-defined one.
func (s Service) SetUserRoles(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, roles []string) (entities.UserAccount, error) {
	normalized := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		name := strings.ToLower(strings.TrimSpace(role))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}

	known, err := s.knownRoleNames(ctx, tenantID)
	if err != nil {
		return entities.UserAccount{}, err
	}
	for _, name := range normalized {
		if _, ok := known[name]; !ok {
			return entities.UserAccount{}, domainerrors.ErrUnknownRole
		}
	}

	account, err := s.Repository.SetUserRoles(ctx, tenantID, userID, normalized, s.now())
	if err != nil {
		return entities.UserAccount{}, err
	}

	if s.PermissionCache != nil {
		if err := s.PermissionCache.Invalidate(ctx, tenantID.String(), userID.String()); err != nil {
			s.logger().Warn("permission cache invalidate failed after role change",
				"event", "rbac_cache_invalidation_failed",
				"module", "identity-access/rbac-service",
				"layer", "application",
				"tenant_id", tenantID.String(),
				"user_id", userID.String(),
				"error", err.Error(),
			)
		}
	}

	s.logger().Info("user roles updated",
		"event", "rbac_user_roles_updated",
		"module", "identity-access/rbac-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"user_id", userID.String(),
		"roles", strings.Join(normalized, ","),
	)
	return account, nil
}

// EffectivePermissions unions the static role map with tenant-defined role
// permissions for one user, via the TTL permission cache.
func (s Service) EffectivePermissions(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID) ([]string, error) {
	now := s.now()
	if s.PermissionCache != nil {
		if cached, ok, err := s.PermissionCache.Get(ctx, tenantID.String(), userID.String(), now); err == nil && ok {
			return cached, nil
		}
	}

	account, err := s.Repository.GetUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	tenantRoles, err := s.Repository.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	permissions := effectivePermissions(account.Roles, tenantRoles)

	if s.PermissionCache != nil {
		if err := s.PermissionCache.Set(ctx, tenantID.String(), userID.String(), permissions, now.Add(s.cacheTTL())); err != nil {
			s.logger().Warn("permission cache set failed",
				"event", "rbac_cache_set_failed",
				"module", "identity-access/rbac-service",
				"layer", "application",
				"tenant_id", tenantID.String(),
				"user_id", userID.String(),
				"error", err.Error(),
			)
		}
	}
	return permissions, nil
}

// AccessReview reports effective roles and permissions for every user in the
// tenant.
func (s Service) AccessReview(ctx context.Context, tenantID uuid.UUID) ([]entities.AccessReviewEntry, error) {
	users, err := s.Repository.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenantRoles, err := s.Repository.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	entries := make([]entities.AccessReviewEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, entities.AccessReviewEntry{
			UserID:      user.UserID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Roles:       append([]string(nil), user.Roles...),
			Permissions: effectivePermissions(user.Roles, tenantRoles),
		})
	}
	return entries, nil
}

func (s Service) Metrics(ctx context.Context, tenantID uuid.UUID) (entities.Metrics, error) {
	roles, err := s.Repository.ListRoles(ctx, tenantID)
	if err != nil {
		return entities.Metrics{}, err
	}
	policies, err := s.Repository.ListPolicies(ctx, tenantID)
	if err != nil {
		return entities.Metrics{}, err
	}
	users, err := s.Repository.ListUsers(ctx, tenantID)
	if err != nil {
		return entities.Metrics{}, err
	}

	metrics := entities.Metrics{
		RoleCount:   len(roles),
		PolicyCount: len(policies),
		UserCount:   len(users),
	}
	for _, user := range users {
		metrics.AssignmentCount += len(user.Roles)
		if len(user.Roles) == 0 {
			metrics.UsersWithoutRoles++
		}
	}
	return metrics, nil
}

func (s Service) knownRoleNames(ctx context.Context, tenantID uuid.UUID) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	for _, name := range services.KnownRoles() {
		known[name] = struct{}{}
	}
	tenantRoles, err := s.Repository.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, role := range tenantRoles {
		known[role.Name] = struct{}{}
	}
	return known, nil
}

func effectivePermissions(userRoles []string, tenantRoles []entities.Role) []string {
	seen := make(map[string]struct{})
	for _, permission := range services.PermissionsForRoles(userRoles) {
		seen[permission] = struct{}{}
	}
	for _, role := range tenantRoles {
		for _, userRole := range userRoles {
			if strings.EqualFold(role.Name, userRole) {
				for _, permission := range role.Permissions {
					seen[strings.ToLower(permission)] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for permission := range seen {
		out = append(out, permission)
	}
	sort.Strings(out)
	return out
}

func normalizePermissions(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		permission := strings.ToLower(strings.TrimSpace(value))
		if permission == "" {
			continue
		}
		if strings.ContainsAny(permission, " \t") {
			return nil, domainerrors.ErrInvalidPermission
		}
		if _, ok := seen[permission]; ok {
			continue
		}
		seen[permission] = struct{}{}
		out = append(out, permission)
	}
	sort.Strings(out)
	return out, nil
}
