package entities

import (
	"time"

	"github.com/google/uuid"
)

// Role is a tenant-defined role carrying an ordered permission set.
// System roles mirror the static role map and cannot be deleted.
type Role struct {
	RoleID      uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Description string
	Permissions []string
	System      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PolicyBinding maps a named endpoint policy to its required permission.
type PolicyBinding struct {
	PolicyID   uuid.UUID
	TenantID   uuid.UUID
	Name       string
	Permission string
	UpdatedAt  time.Time
}

// UserAccount is the directory record role assignments attach to.
type UserAccount struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	Email       string
	DisplayName string
	Roles       []string
	UpdatedAt   time.Time
}

// AccessReviewEntry is one row of the per-user effective access report.
type AccessReviewEntry struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Roles       []string
	Permissions []string
}

// Metrics summarizes role usage within one tenant.
type Metrics struct {
	RoleCount         int
	PolicyCount       int
	UserCount         int
	AssignmentCount   int
	UsersWithoutRoles int
}
