package httpadapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"paygrid/contexts/identity-access/rbac-service/application"
	"paygrid/contexts/identity-access/rbac-service/domain/entities"
	httptransport "paygrid/contexts/identity-access/rbac-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListRolesHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.ListRolesResponse, error) {
	roles, err := h.Service.ListRoles(ctx, tenantID)
	if err != nil {
		return httptransport.ListRolesResponse{}, err
	}
	out := make([]httptransport.RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse(role))
	}
	return httptransport.ListRolesResponse{Roles: out}, nil
}

func (h Handler) CreateRoleHandler(ctx context.Context, tenantID uuid.UUID, request httptransport.CreateRoleRequest) (httptransport.RoleResponse, error) {
	role, err := h.Service.CreateRole(ctx, tenantID, application.CreateRoleCommand{
		Name:        request.Name,
		Description: request.Description,
		Permissions: request.Permissions,
	})
	if err != nil {
		return httptransport.RoleResponse{}, err
	}
	return roleResponse(role), nil
}

func (h Handler) UpdateRoleHandler(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID, request httptransport.UpdateRoleRequest) (httptransport.RoleResponse, error) {
	role, err := h.Service.UpdateRole(ctx, tenantID, roleID, application.UpdateRoleCommand{
		Name:        request.Name,
		Description: request.Description,
		Permissions: request.Permissions,
	})
	if err != nil {
		return httptransport.RoleResponse{}, err
	}
	return roleResponse(role), nil
}

func (h Handler) DeleteRoleHandler(ctx context.Context, tenantID uuid.UUID, roleID uuid.UUID) error {
	return h.Service.DeleteRole(ctx, tenantID, roleID)
}

func (h Handler) ListPoliciesHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.ListPoliciesResponse, error) {
	policies, err := h.Service.ListPolicies(ctx, tenantID)
	if err != nil {
		return httptransport.ListPoliciesResponse{}, err
	}
	out := make([]httptransport.PolicyResponse, 0, len(policies))
	for _, binding := range policies {
		out = append(out, policyResponse(binding))
	}
	return httptransport.ListPoliciesResponse{Policies: out}, nil
}

func (h Handler) UpdatePolicyHandler(ctx context.Context, tenantID uuid.UUID, policyID uuid.UUID, request httptransport.UpdatePolicyRequest) (httptransport.PolicyResponse, error) {
	binding, err := h.Service.UpdatePolicy(ctx, tenantID, policyID, request.Permission)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(binding), nil
}

func (h Handler) UpdateUserRolesHandler(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, request httptransport.UpdateUserRolesRequest) (httptransport.UserResponse, error) {
	account, err := h.Service.SetUserRoles(ctx, tenantID, userID, request.Roles)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{
		UserID:      account.UserID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Roles:       account.Roles,
		UpdatedAt:   account.UpdatedAt,
	}, nil
}

func (h Handler) AccessReviewHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.AccessReviewResponse, error) {
	entries, err := h.Service.AccessReview(ctx, tenantID)
	if err != nil {
		return httptransport.AccessReviewResponse{}, err
	}
	out := make([]httptransport.AccessReviewEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, httptransport.AccessReviewEntryResponse{
			UserID:      entry.UserID.String(),
			Email:       entry.Email,
			DisplayName: entry.DisplayName,
			Roles:       entry.Roles,
			Permissions: entry.Permissions,
		})
	}
	return httptransport.AccessReviewResponse{Entries: out}, nil
}

func (h Handler) MetricsHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.MetricsResponse, error) {
	metrics, err := h.Service.Metrics(ctx, tenantID)
	if err != nil {
		return httptransport.MetricsResponse{}, err
	}
	return httptransport.MetricsResponse{
		RoleCount:         metrics.RoleCount,
		PolicyCount:       metrics.PolicyCount,
		UserCount:         metrics.UserCount,
		AssignmentCount:   metrics.AssignmentCount,
		UsersWithoutRoles: metrics.UsersWithoutRoles,
	}, nil
}

func roleResponse(role entities.Role) httptransport.RoleResponse {
	return httptransport.RoleResponse{
		RoleID:      role.RoleID.String(),
		Name:        role.Name,
		Description: role.Description,
		Permissions: role.Permissions,
		System:      role.System,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func policyResponse(binding entities.PolicyBinding) httptransport.PolicyResponse {
	return httptransport.PolicyResponse{
		PolicyID:   binding.PolicyID.String(),
		Name:       binding.Name,
		Permission: binding.Permission,
		UpdatedAt:  binding.UpdatedAt,
	}
}
