package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/identity-access/rbac-service/adapters/memory"
	"paygrid/contexts/identity-access/rbac-service/domain/entities"
	domainerrors "paygrid/contexts/identity-access/rbac-service/domain/errors"
	tenancymemory "paygrid/contexts/identity-access/tenancy-service/adapters/memory"
)

func newTestService() (Service, *memory.Store, *tenancymemory.Cache) {
	store := memory.NewStore()
	cache := tenancymemory.NewCache()
	return Service{
		Repository:      store,
		PermissionCache: cache,
		Clock:           store,
		IDGenerator:     store,
		CacheTTL:        5 * time.Minute,
	}, store, cache
}

func TestCreateRoleNormalizesNameAndPermissions(t *testing.T) {
	service, _, _ := newTestService()
	tenantID := uuid.New()

	role, err := service.CreateRole(context.Background(), tenantID, CreateRoleCommand{
		Name:        "  Finance_Auditor ",
		Description: "read-only finance",
		Permissions: []string{"Payroll.Read", "payroll.read", "payslip.read"},
	})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	if role.Name != "finance_auditor" {
		t.Fatalf("expected normalized name, got %q", role.Name)
	}
	if len(role.Permissions) != 2 {
		t.Fatalf("expected deduped permissions, got %v", role.Permissions)
	}
}

func TestCreateRoleRequiresName(t *testing.T) {
	service, _, _ := newTestService()
	_, err := service.CreateRole(context.Background(), uuid.New(), CreateRoleCommand{Name: "   "})
	if !errors.Is(err, domainerrors.ErrRoleNameRequired) {
		t.Fatalf("expected ErrRoleNameRequired, got %v", err)
	}
}

func TestCreateRoleRejectsDuplicateName(t *testing.T) {
	service, _, _ := newTestService()
	tenantID := uuid.New()
	cmd := CreateRoleCommand{Name: "auditor", Permissions: []string{"payroll.read"}}

	if _, err := service.CreateRole(context.Background(), tenantID, cmd); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := service.CreateRole(context.Background(), tenantID, cmd); !errors.Is(err, domainerrors.ErrRoleAlreadyExists) {
		t.Fatalf("expected ErrRoleAlreadyExists, got %v", err)
	}
}

func TestCreateRoleRejectsPermissionWithWhitespace(t *testing.T) {
	service, _, _ := newTestService()
	_, err := service.CreateRole(context.Background(), uuid.New(), CreateRoleCommand{
		Name:        "broken",
		Permissions: []string{"payroll read"},
	})
	if !errors.Is(err, domainerrors.ErrInvalidPermission) {
		t.Fatalf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestSystemRoleIsImmutable(t *testing.T) {
	service, store, _ := newTestService()
	tenantID := uuid.New()
	roleID := uuid.New()
	store.SeedRole(entities.Role{
		RoleID:   roleID,
		TenantID: tenantID,
		Name:     "admin",
		System:   true,
	})

	if _, err := service.UpdateRole(context.Background(), tenantID, roleID, UpdateRoleCommand{Name: "renamed"}); !errors.Is(err, domainerrors.ErrSystemRoleImmutable) {
		t.Fatalf("update: expected ErrSystemRoleImmutable, got %v", err)
	}
	if err := service.DeleteRole(context.Background(), tenantID, roleID); !errors.Is(err, domainerrors.ErrSystemRoleImmutable) {
		t.Fatalf("delete: expected ErrSystemRoleImmutable, got %v", err)
	}
}

func TestSetUserRolesRejectsUnknownRole(t *testing.T) {
	service, store, _ := newTestService()
	tenantID := uuid.New()
	userID := uuid.New()
	store.SeedUser(entities.UserAccount{UserID: userID, TenantID: tenantID, Email: "u@t.test"})

	_, err := service.SetUserRoles(context.Background(), tenantID, userID, []string{"made_up_role"})
	if !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestSetUserRolesAcceptsStaticAndTenantRoles(t *testing.T) {
	service, store, _ := newTestService()
	tenantID := uuid.New()
	userID := uuid.New()
	store.SeedUser(entities.UserAccount{UserID: userID, TenantID: tenantID, Email: "u@t.test"})
	store.SeedRole(entities.Role{RoleID: uuid.New(), TenantID: tenantID, Name: "auditor", Permissions: []string{"payroll.read"}})

	account, err := service.SetUserRoles(context.Background(), tenantID, userID, []string{"Employee", "auditor", "employee"})
	if err != nil {
		t.Fatalf("set roles: %v", err)
	}
	if len(account.Roles) != 2 {
		t.Fatalf("expected deduped roles, got %v", account.Roles)
	}
}

func TestSetUserRolesInvalidatesPermissionCache(t *testing.T) {
	service, store, cache := newTestService()
	tenantID := uuid.New()
	userID := uuid.New()
	store.SeedUser(entities.UserAccount{UserID: userID, TenantID: tenantID, Email: "u@t.test", Roles: []string{"employee"}})

	first, err := service.EffectivePermissions(context.Background(), tenantID, userID)
	if err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if cached, ok, _ := cache.Get(context.Background(), tenantID.String(), userID.String(), store.Now()); !ok || len(cached) != len(first) {
		t.Fatal("expected primed cache entry")
	}

	if _, err := service.SetUserRoles(context.Background(), tenantID, userID, []string{"hr_manager"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}
	if _, ok, _ := cache.Get(context.Background(), tenantID.String(), userID.String(), store.Now()); ok {
		t.Fatal("expected cache invalidation after role change")
	}
}

func TestEffectivePermissionsUnionsTenantRoles(t *testing.T) {
	service, store, _ := newTestService()
	tenantID := uuid.New()
	userID := uuid.New()
	store.SeedRole(entities.Role{RoleID: uuid.New(), TenantID: tenantID, Name: "auditor", Permissions: []string{"payroll.read", "invoice.read"}})
	store.SeedUser(entities.UserAccount{UserID: userID, TenantID: tenantID, Email: "u@t.test", Roles: []string{"employee", "auditor"}})

	permissions, err := service.EffectivePermissions(context.Background(), tenantID, userID)
	if err != nil {
		t.Fatalf("effective permissions: %v", err)
	}

	want := map[string]bool{"org.read": false, "payslip.read": false, "payroll.read": false, "invoice.read": false}
	for _, p := range permissions {
		if _, tracked := want[p]; tracked {
			want[p] = true
		}
	}
	for p, found := range want {
		if !found {
			t.Fatalf("missing permission %q in %v", p, permissions)
		}
	}
}

func TestMetricsCountsAssignments(t *testing.T) {
	service, store, _ := newTestService()
	tenantID := uuid.New()
	store.SeedRole(entities.Role{RoleID: uuid.New(), TenantID: tenantID, Name: "auditor"})
	store.SeedUser(entities.UserAccount{UserID: uuid.New(), TenantID: tenantID, Email: "a@t.test", Roles: []string{"employee", "auditor"}})
	store.SeedUser(entities.UserAccount{UserID: uuid.New(), TenantID: tenantID, Email: "b@t.test"})

	metrics, err := service.Metrics(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.RoleCount != 1 || metrics.UserCount != 2 {
		t.Fatalf("unexpected counts %+v", metrics)
	}
	if metrics.AssignmentCount != 2 || metrics.UsersWithoutRoles != 1 {
		t.Fatalf("unexpected assignment stats %+v", metrics)
	}
}

func TestAccessReviewIsTenantScoped(t *testing.T) {
	service, store, _ := newTestService()
	tenantA := uuid.New()
	tenantB := uuid.New()
	store.SeedUser(entities.UserAccount{UserID: uuid.New(), TenantID: tenantA, Email: "a@t.test", Roles: []string{"employee"}})
	store.SeedUser(entities.UserAccount{UserID: uuid.New(), TenantID: tenantB, Email: "b@t.test", Roles: []string{"admin"}})

	entries, err := service.AccessReview(context.Background(), tenantA)
	if err != nil {
		t.Fatalf("access review: %v", err)
	}
	if len(entries) != 1 || entries[0].Email != "a@t.test" {
		t.Fatalf("expected only tenant A users, got %+v", entries)
	}
}
