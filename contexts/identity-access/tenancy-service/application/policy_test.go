package application

import (
	"testing"

	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
)

func TestParsePolicyPermissionPrefix(t *testing.T) {
	policy := ParsePolicy("perm:org.read", "")
	if policy.Kind != PolicyRequirePermission {
		t.Fatalf("expected permission policy, got %v", policy.Kind)
	}
	if policy.Permission != "org.read" {
		t.Fatalf("unexpected permission %q", policy.Permission)
	}
}

func TestParsePolicyCustomPrefix(t *testing.T) {
	policy := ParsePolicy("require:payroll.write", "require:")
	if policy.Kind != PolicyRequirePermission || policy.Permission != "payroll.write" {
		t.Fatalf("unexpected policy %+v", policy)
	}
}

func TestParsePolicyFallsBackToAuthenticatedOnly(t *testing.T) {
	for _, name := range []string{"authenticated", "", "perm:", "perm:   "} {
		policy := ParsePolicy(name, "")
		if policy.Kind != PolicyAuthenticatedOnly {
			t.Fatalf("name %q: expected authenticated-only, got %v", name, policy.Kind)
		}
	}
}

func TestPolicyAdminBypassesPermissionCheck(t *testing.T) {
	policy := Policy{Kind: PolicyRequirePermission, Permission: "payroll.disburse"}
	snapshot := entities.Snapshot{Role: "admin", Roles: []string{"admin"}}
	if !policy.Allows(snapshot) {
		t.Fatal("admin must pass every permission check")
	}
}

func TestPolicyDeniesEmptyPermissionSet(t *testing.T) {
	policy := Policy{Kind: PolicyRequirePermission, Permission: "payroll.write"}
	snapshot := entities.Snapshot{Roles: []string{"unmapped_role"}}
	if policy.Allows(snapshot) {
		t.Fatal("empty permission set must be denied")
	}
}

func TestPolicyMatchesPermissionCaseInsensitively(t *testing.T) {
	policy := Policy{Kind: PolicyRequirePermission, Permission: "org.read"}
	snapshot := entities.Snapshot{Permissions: []string{"ORG.READ"}}
	if !policy.Allows(snapshot) {
		t.Fatal("permission match must be case-insensitive")
	}
}

func TestPolicyAuthenticatedOnlyAlwaysAllows(t *testing.T) {
	policy := Policy{Kind: PolicyAuthenticatedOnly}
	if !policy.Allows(entities.Snapshot{}) {
		t.Fatal("authenticated-only policy must allow once the guard has run")
	}
}
