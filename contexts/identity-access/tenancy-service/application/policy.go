package application

import (
	"strings"

	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
)

// PolicyKind is the closed set of endpoint authorization behaviors.
type PolicyKind int

const (
	// PolicyAuthenticatedOnly requires resolved identity context and nothing
	// more; the tenant guard has already run by the time policies evaluate.
	PolicyAuthenticatedOnly PolicyKind = iota
	// PolicyRequirePermission requires one named permission in the snapshot,
	// with the admin role short-circuiting to allow.
	PolicyRequirePermission
)

// Policy is one endpoint's authorization rule, resolved once at route
// registration rather than re-parsed per request.
type Policy struct {
	Kind       PolicyKind
	Permission string
}

// ParsePolicy maps a policy name to a Policy. Names carrying the configured
// prefix (default "perm:") resolve to a single-permission requirement; any
// other name falls back to plain authenticated-only behavior.
func ParsePolicy(name string, prefix string) Policy {
	if prefix == "" {
		prefix = "perm:"
	}
	if strings.HasPrefix(name, prefix) {
		permission := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, prefix)))
		if permission != "" {
			return Policy{Kind: PolicyRequirePermission, Permission: permission}
		}
	}
	return Policy{Kind: PolicyAuthenticatedOnly}
}

// Allows evaluates the policy against a resolved snapshot. Pure predicate.
func (p Policy) Allows(snapshot entities.Snapshot) bool {
	switch p.Kind {
	case PolicyRequirePermission:
		if snapshot.IsAdmin() {
			return true
		}
		return snapshot.HasPermission(p.Permission)
	default:
		return true
	}
}
