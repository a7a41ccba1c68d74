package application

import (
	"net/http"
	"strings"

	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
	"paygrid/contexts/identity-access/tenancy-service/domain/services"
	"paygrid/contexts/identity-access/tenancy-service/ports"

	"github.com/google/uuid"
)

// Headers consumed by the resolver.
const (
	HeaderTenantID    = "X-Tenant-Id"
	HeaderUserID      = "X-User-Id"
	HeaderUserEmail   = "X-User-Email"
	HeaderUserRole    = "X-User-Role"
	HeaderPermissions = "X-User-Permissions"
)

// ResolverConfig carries the fallback identity and the dev-mode header toggle.
type ResolverConfig struct {
	AllowHeaderIdentity bool
	FallbackTenantID    uuid.UUID
	FallbackUserID      uuid.UUID
	FallbackEmail       string
	FallbackRole        string
}

// Resolver produces one identity snapshot per inbound request from a verified
// principal or, when enabled, header fallback. Pure read of request state;
// no side effects.
type Resolver struct {
	Config ResolverConfig
}

// Resolve derives the snapshot for this request.
//
// For authenticated principals a missing tenant or user resolves to the zero
// value, never to the configured fallback: incomplete tokens must fail closed
// downstream instead of silently impersonating the fallback identity.
func (r Resolver) Resolve(principal ports.Principal, header http.Header) entities.Snapshot {
	if principal.Authenticated {
		return r.resolveAuthenticated(principal, header)
	}
	if r.Config.AllowHeaderIdentity {
		return r.resolveFromHeaders(header)
	}
	return r.resolveFallback()
}

func (r Resolver) resolveAuthenticated(principal ports.Principal, header http.Header) entities.Snapshot {
	tenantRaw := principal.Claim("tenant_id", "tid")
	if tenantRaw == "" {
		tenantRaw = strings.TrimSpace(header.Get(HeaderTenantID))
	}
	userRaw := principal.Claim("oid", "nameidentifier", "sub")
	if userRaw == "" {
		userRaw = strings.TrimSpace(header.Get(HeaderUserID))
	}
	email := principal.Claim("email", "emails", "preferred_username")
	if email == "" {
		email = strings.TrimSpace(header.Get(HeaderUserEmail))
	}

	roles := dedupeRoles(append(
		principal.ClaimValues("roles", "role"),
		splitCSV(header.Get(HeaderUserRole))...,
	))

	permissions := dedupePermissions(append(
		principal.ClaimValues("permissions"),
		splitCSV(header.Get(HeaderPermissions))...,
	))
	if len(permissions) == 0 {
		permissions = services.PermissionsForRoles(roles)
	}

	return entities.Snapshot{
		TenantID:      parseUUIDOrNil(tenantRaw),
		UserID:        parseUUIDOrNil(userRaw),
		Email:         email,
		Role:          roleLabel(roles),
		Roles:         roles,
		Permissions:   permissions,
		Authenticated: true,
	}
}

func (r Resolver) resolveFromHeaders(header http.Header) entities.Snapshot {
	tenantID := parseUUIDOrNil(strings.TrimSpace(header.Get(HeaderTenantID)))
	if tenantID == uuid.Nil {
		tenantID = r.Config.FallbackTenantID
	}
	userID := parseUUIDOrNil(strings.TrimSpace(header.Get(HeaderUserID)))
	if userID == uuid.Nil {
		userID = r.Config.FallbackUserID
	}
	email := strings.TrimSpace(header.Get(HeaderUserEmail))
	if email == "" {
		email = r.Config.FallbackEmail
	}

	roles := dedupeRoles(splitCSV(header.Get(HeaderUserRole)))
	if len(roles) == 0 {
		roles = dedupeRoles([]string{r.Config.FallbackRole})
	}

	permissions := dedupePermissions(splitCSV(header.Get(HeaderPermissions)))
	if len(permissions) == 0 {
		permissions = services.PermissionsForRoles(roles)
	}

	return entities.Snapshot{
		TenantID:      tenantID,
		UserID:        userID,
		Email:         email,
		Role:          roleLabel(roles),
		Roles:         roles,
		Permissions:   permissions,
		Authenticated: false,
	}
}

func (r Resolver) resolveFallback() entities.Snapshot {
	roles := dedupeRoles([]string{r.Config.FallbackRole})
	return entities.Snapshot{
		TenantID:      r.Config.FallbackTenantID,
		UserID:        r.Config.FallbackUserID,
		Email:         r.Config.FallbackEmail,
		Role:          roleLabel(roles),
		Roles:         roles,
		Permissions:   services.PermissionsForRoles(roles),
		Authenticated: false,
	}
}

// roleLabel collapses the role list to one label: "admin" when any resolved
// role is an admin role, else the first resolved role.
func roleLabel(roles []string) string {
	for _, role := range roles {
		if services.IsAdminRole(role) {
			return "admin"
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}

func parseUUIDOrNil(raw string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func dedupeRoles(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func dedupePermissions(values []string) []string {
	return dedupeRoles(values)
}
