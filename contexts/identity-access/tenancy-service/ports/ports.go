package ports

import (
	"context"
	"time"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Principal is the claims-bearing output of the external token verifier.
// Claims are multi-valued; single-valued claims carry one element.
type Principal struct {
	Authenticated bool
	Claims        map[string][]string
}

// Claim returns the first non-empty value among the named claims, in order.
func (p Principal) Claim(names ...string) string {
	for _, name := range names {
		for _, value := range p.Claims[name] {
			if value != "" {
				return value
			}
		}
	}
	return ""
}

// ClaimValues returns all values of the named claims, in order.
func (p Principal) ClaimValues(names ...string) []string {
	var out []string
	for _, name := range names {
		out = append(out, p.Claims[name]...)
	}
	return out
}

// TokenVerifier validates a bearer token and returns its claims.
// Verification itself is an external collaborator; an invalid or absent token
// yields an unauthenticated principal, never an error the pipeline acts on.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// PermissionCache stores effective permissions with TTL semantics.
type PermissionCache interface {
	Get(ctx context.Context, tenantID string, userID string, now time.Time) ([]string, bool, error)
	Set(ctx context.Context, tenantID string, userID string, permissions []string, expiresAt time.Time) error
	Invalidate(ctx context.Context, tenantID string, userID string) error
}
