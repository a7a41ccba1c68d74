package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	rbacerrors "paygrid/contexts/identity-access/rbac-service/domain/errors"
	rbachttp "paygrid/contexts/identity-access/rbac-service/transport/http"
)

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.rbac.Handler.ListRolesHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	var req rbachttp.CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.rbac.Handler.CreateRoleHandler(r.Context(), snapshot.TenantID, req)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	roleID, err := uuid.Parse(r.PathValue("role_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_role_id", "role id must be a UUID")
		return
	}
	var req rbachttp.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.rbac.Handler.UpdateRoleHandler(r.Context(), snapshot.TenantID, roleID, req)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	roleID, err := uuid.Parse(r.PathValue("role_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_role_id", "role id must be a UUID")
		return
	}
	if err := s.rbac.Handler.DeleteRoleHandler(r.Context(), snapshot.TenantID, roleID); err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.rbac.Handler.ListPoliciesHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	policyID, err := uuid.Parse(r.PathValue("policy_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_policy_id", "policy id must be a UUID")
		return
	}
	var req rbachttp.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.rbac.Handler.UpdatePolicyHandler(r.Context(), snapshot.TenantID, policyID, req)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessReview(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.rbac.Handler.AccessReviewHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRbacMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.rbac.Handler.MetricsHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeRbacDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rbacerrors.ErrRoleNotFound):
		respondError(w, r, http.StatusNotFound, "role_not_found", err.Error())
	case errors.Is(err, rbacerrors.ErrRoleNameRequired):
		respondValidationError(w, r, "role_name_required", err.Error(), []ValidationError{
			{Field: "name", Message: "name is required"},
		})
	case errors.Is(err, rbacerrors.ErrRoleAlreadyExists):
		respondError(w, r, http.StatusConflict, "role_already_exists", err.Error())
	case errors.Is(err, rbacerrors.ErrSystemRoleImmutable):
		respondError(w, r, http.StatusConflict, "system_role_immutable", err.Error())
	case errors.Is(err, rbacerrors.ErrPolicyNotFound):
		respondError(w, r, http.StatusNotFound, "policy_not_found", err.Error())
	case errors.Is(err, rbacerrors.ErrInvalidPermission):
		respondValidationError(w, r, "invalid_permission", err.Error(), []ValidationError{
			{Field: "permissions", Message: "permissions must be non-empty strings"},
		})
	case errors.Is(err, rbacerrors.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, rbacerrors.ErrUnknownRole):
		respondValidationError(w, r, "unknown_role", err.Error(), []ValidationError{
			{Field: "roles", Message: "one or more roles are not defined for this tenant"},
		})
	default:
		s.logUnhandled(r, "rbac", err)
		respondError(w, r, http.StatusInternalServerError, "unhandled_error", "an unexpected error occurred")
	}
}

func (s *Server) logUnhandled(r *http.Request, domain string, err error) {
	s.logger.Error("unhandled domain error",
		"event", "http_unhandled_error",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"domain", domain,
		"method", r.Method,
		"path", r.URL.Path,
		"trace_id", traceIDFrom(r.Context()),
		"error", err.Error(),
	)
}
