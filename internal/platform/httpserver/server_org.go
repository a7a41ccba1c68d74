package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	orgerrors "paygrid/contexts/workforce-core/org-service/domain/errors"
	orghttp "paygrid/contexts/workforce-core/org-service/transport/http"
)

func (s *Server) handleOrgStructure(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.org.Handler.StructureHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}

	query := r.URL.Query()
	page := 0
	pageSize := 0
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
		page = parsed
	}
	if raw := query.Get("pageSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_page", "pageSize must be an integer")
			return
		}
		pageSize = parsed
	}

	resp, err := s.org.Handler.ListEmployeesHandler(r.Context(), snapshot.TenantID, page, pageSize)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	employeeID, err := uuid.Parse(r.PathValue("employee_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_employee_id", "employee id must be a UUID")
		return
	}
	resp, err := s.org.Handler.GetEmployeeHandler(r.Context(), snapshot.TenantID, employeeID)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManagerChain(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	employeeID, err := uuid.Parse(r.PathValue("employee_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_employee_id", "employee id must be a UUID")
		return
	}
	resp, err := s.org.Handler.ManagerChainHandler(r.Context(), snapshot.TenantID, employeeID)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDirectReports(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	managerID, err := uuid.Parse(r.PathValue("manager_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_manager_id", "manager id must be a UUID")
		return
	}
	resp, err := s.org.Handler.DirectReportsHandler(r.Context(), snapshot.TenantID, managerID)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePortalAccess(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	employeeID, err := uuid.Parse(r.PathValue("employee_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_employee_id", "employee id must be a UUID")
		return
	}
	var req orghttp.UpdatePortalAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.org.Handler.UpdatePortalAccessHandler(r.Context(), snapshot.TenantID, employeeID, req)
	if err != nil {
		s.writeOrgDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeOrgDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orgerrors.ErrEmployeeNotFound):
		respondError(w, r, http.StatusNotFound, "employee_not_found", err.Error())
	case errors.Is(err, orgerrors.ErrManagerNotFound):
		respondError(w, r, http.StatusNotFound, "manager_not_found", err.Error())
	case errors.Is(err, orgerrors.ErrInvalidPage):
		respondError(w, r, http.StatusBadRequest, "invalid_page", err.Error())
	default:
		s.logUnhandled(r, "org", err)
		respondError(w, r, http.StatusInternalServerError, "unhandled_error", "an unexpected error occurred")
	}
}
