package httptransport

import "time"

// Module-private DTOs for the RBAC HTTP contract. Wire format is camelCase.

type RoleResponse struct {
	RoleID      string    `json:"roleId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	System      bool      `json:"system"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListRolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type PolicyResponse struct {
	PolicyID   string    `json:"policyId"`
	Name       string    `json:"name"`
	Permission string    `json:"permission"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ListPoliciesResponse struct {
	Policies []PolicyResponse `json:"policies"`
}

type UpdatePolicyRequest struct {
	Permission string `json:"permission"`
}

type UpdateUserRolesRequest struct {
	Roles []string `json:"roles"`
}

type UserResponse struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	Roles       []string  `json:"roles"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AccessReviewEntryResponse struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type AccessReviewResponse struct {
	Entries []AccessReviewEntryResponse `json:"entries"`
}

type MetricsResponse struct {
	RoleCount         int `json:"roleCount"`
	PolicyCount       int `json:"policyCount"`
	UserCount         int `json:"userCount"`
	AssignmentCount   int `json:"assignmentCount"`
	UsersWithoutRoles int `json:"usersWithoutRoles"`
}

type MeResponse struct {
	TenantID      string   `json:"tenantId"`
	UserID        string   `json:"userId"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Roles         []string `json:"roles"`
	Permissions   []string `json:"permissions"`
	Authenticated bool     `json:"authenticated"`
}
