package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	rbachttp "paygrid/contexts/identity-access/rbac-service/transport/http"
	tenancy "paygrid/contexts/identity-access/tenancy-service"
	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
)

// snapshotFromRequest returns the resolved snapshot. The tenant guard runs
// before any business handler, so absence here is a programming error.
func snapshotFromRequest(r *http.Request) (entities.Snapshot, bool) {
	return tenancy.SnapshotFrom(r.Context())
}

func (s *Server) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	writeJSON(w, http.StatusOK, rbachttp.MeResponse{
		TenantID:      snapshot.TenantID.String(),
		UserID:        snapshot.UserID.String(),
		Email:         snapshot.Email,
		Role:          snapshot.Role,
		Roles:         snapshot.Roles,
		Permissions:   snapshot.Permissions,
		Authenticated: snapshot.Authenticated,
	})
}

func (s *Server) handleUpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user id must be a UUID")
		return
	}

	var req rbachttp.UpdateUserRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.rbac.Handler.UpdateUserRolesHandler(r.Context(), snapshot.TenantID, userID, req)
	if err != nil {
		s.writeRbacDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
