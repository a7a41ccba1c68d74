package services

import (
	"sort"
	"strings"
)

// rolePermissions is the static role -> permission mapping. Compiled constant,
// never mutated at runtime; tenant-specific roles layer on top via rbac-service.
var rolePermissions = map[string][]string{
	"admin": {
		"org.read", "org.write",
		"employee.read", "employee.write",
		"rbac.read", "rbac.write",
		"payroll.read", "payroll.write", "payroll.approve", "payroll.disburse",
		"payslip.read", "payslip.email",
	},
	"super_admin": {
		"org.read", "org.write",
		"employee.read", "employee.write",
		"rbac.read", "rbac.write",
		"payroll.read", "payroll.write", "payroll.approve", "payroll.disburse",
		"payslip.read", "payslip.email",
	},
	"hr_manager": {
		"org.read", "employee.read", "employee.write", "rbac.read", "payslip.read",
	},
	"payroll_manager": {
		"org.read", "payroll.read", "payroll.write", "payroll.approve",
		"payroll.disburse", "payslip.read", "payslip.email",
	},
	"manager": {
		"org.read", "employee.read", "payslip.read",
	},
	"employee": {
		"org.read", "payslip.read",
	},
}

// PermissionsForRoles unions the mapped permission sets of the given roles.
// Unknown roles contribute nothing. Output is lowercased, deduplicated, sorted.
func PermissionsForRoles(roles []string) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, permission := range rolePermissions[strings.ToLower(strings.TrimSpace(role))] {
			seen[permission] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for permission := range seen {
		out = append(out, permission)
	}
	sort.Strings(out)
	return out
}

// KnownRoles lists the statically mapped role names in sorted order.
func KnownRoles() []string {
	out := make([]string, 0, len(rolePermissions))
	for role := range rolePermissions {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// IsAdminRole reports whether a role name short-circuits permission checks.
func IsAdminRole(role string) bool {
	return strings.EqualFold(role, "admin") || strings.EqualFold(role, "super_admin")
}
