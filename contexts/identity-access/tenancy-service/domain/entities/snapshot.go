package entities

import (
	"strings"

	"github.com/google/uuid"
)

// Snapshot is the identity/permission context resolved for one request.
// It is derived from a verified principal or header fallback and is never
// persisted.
type Snapshot struct {
	TenantID      uuid.UUID
	UserID        uuid.UUID
	Email         string
	Role          string
	Roles         []string
	Permissions   []string
	Authenticated bool
}

// IsAdmin reports whether the resolved role label grants unconditional access.
func (s Snapshot) IsAdmin() bool {
	return strings.EqualFold(s.Role, "admin")
}

// HasPermission checks case-insensitive membership in the permission set.
func (s Snapshot) HasPermission(permission string) bool {
	needle := strings.ToLower(strings.TrimSpace(permission))
	if needle == "" {
		return false
	}
	for _, granted := range s.Permissions {
		if strings.ToLower(strings.TrimSpace(granted)) == needle {
			return true
		}
	}
	return false
}

// HasRole checks case-insensitive membership in the resolved role list.
func (s Snapshot) HasRole(role string) bool {
	for _, r := range s.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
