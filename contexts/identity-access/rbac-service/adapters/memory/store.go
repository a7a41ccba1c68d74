package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/identity-access/rbac-service/domain/entities"
	domainerrors "paygrid/contexts/identity-access/rbac-service/domain/errors"
)

// Store is an in-memory adapter implementing the RBAC repository plus clock
// and id-generation ports. Intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	roles    map[uuid.UUID]entities.Role
	policies map[uuid.UUID]entities.PolicyBinding
	users    map[uuid.UUID]entities.UserAccount

	nowOverride func() time.Time
}

func NewStore() *Store {
	return &Store{
		roles:    make(map[uuid.UUID]entities.Role),
		policies: make(map[uuid.UUID]entities.PolicyBinding),
		users:    make(map[uuid.UUID]entities.UserAccount),
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

// SeedRole inserts a role directly, bypassing validation. Test helper.
func (s *Store) SeedRole(role entities.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.RoleID] = role
}

// SeedPolicy inserts a policy binding directly. Test helper.
func (s *Store) SeedPolicy(binding entities.PolicyBinding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[binding.PolicyID] = binding
}

// SeedUser inserts a user account directly. Test helper.
func (s *Store) SeedUser(account entities.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[account.UserID] = account
}

func (s *Store) ListRoles(_ context.Context, tenantID uuid.UUID) ([]entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Role, 0)
	for _, role := range s.roles {
		if role.TenantID == tenantID {
			out = append(out, role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetRole(_ context.Context, tenantID uuid.UUID, roleID uuid.UUID) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[roleID]
	if !ok || role.TenantID != tenantID {
		return entities.Role{}, domainerrors.ErrRoleNotFound
	}
	return role, nil
}

func (s *Store) CreateRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.TenantID == role.TenantID && strings.EqualFold(existing.Name, role.Name) {
			return domainerrors.ErrRoleAlreadyExists
		}
	}
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) UpdateRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.roles[role.RoleID]
	if !ok || existing.TenantID != role.TenantID {
		return domainerrors.ErrRoleNotFound
	}
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) DeleteRole(_ context.Context, tenantID uuid.UUID, roleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[roleID]
	if !ok || role.TenantID != tenantID {
		return domainerrors.ErrRoleNotFound
	}
	delete(s.roles, roleID)
	return nil
}

func (s *Store) ListPolicies(_ context.Context, tenantID uuid.UUID) ([]entities.PolicyBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.PolicyBinding, 0)
	for _, binding := range s.policies {
		if binding.TenantID == tenantID {
			out = append(out, binding)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdatePolicy(_ context.Context, binding entities.PolicyBinding) (entities.PolicyBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.policies[binding.PolicyID]
	if !ok || existing.TenantID != binding.TenantID {
		return entities.PolicyBinding{}, domainerrors.ErrPolicyNotFound
	}
	existing.Permission = binding.Permission
	existing.UpdatedAt = binding.UpdatedAt
	s.policies[binding.PolicyID] = existing
	return existing, nil
}

func (s *Store) GetUser(_ context.Context, tenantID uuid.UUID, userID uuid.UUID) (entities.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok || user.TenantID != tenantID {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context, tenantID uuid.UUID) ([]entities.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.UserAccount, 0)
	for _, user := range s.users {
		if user.TenantID == tenantID {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) SetUserRoles(_ context.Context, tenantID uuid.UUID, userID uuid.UUID, roles []string, updatedAt time.Time) (entities.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.TenantID != tenantID {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	user.Roles = append([]string(nil), roles...)
	user.UpdatedAt = updatedAt
	s.users[userID] = user
	return user, nil
}
