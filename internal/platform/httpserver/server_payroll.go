package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	payrollerrors "paygrid/contexts/payroll-core/payroll-service/domain/errors"
	payrollhttp "paygrid/contexts/payroll-core/payroll-service/transport/http"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	resp, err := s.payroll.Handler.ListRunsHandler(r.Context(), snapshot.TenantID)
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	var req payrollhttp.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.payroll.Handler.CreateRunHandler(r.Context(), snapshot.TenantID, snapshot.UserID, req)
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApproveRun(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_run_id", "run id must be a UUID")
		return
	}
	resp, err := s.payroll.Handler.ApproveRunHandler(r.Context(), snapshot.TenantID, runID)
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDisburseRun(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := snapshotFromRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
		return
	}
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_run_id", "run id must be a UUID")
		return
	}
	resp, err := s.payroll.Handler.DisburseRunHandler(r.Context(), snapshot.TenantID, runID)
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPayslips(w http.ResponseWriter, r *http.Request) {
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
	resp, err := s.payroll.Handler.ListPayslipsHandler(r.Context(), snapshot.TenantID, employeeID)
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPayslip(w http.ResponseWriter, r *http.Request) {
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
	resp, err := s.payroll.Handler.GetPayslipHandler(r.Context(), snapshot.TenantID, employeeID, r.PathValue("period"))
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEmailPayslip(w http.ResponseWriter, r *http.Request) {
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
	resp, err := s.payroll.Handler.EmailPayslipHandler(r.Context(), snapshot.TenantID, employeeID, r.PathValue("period"))
	if err != nil {
		s.writePayrollDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) writePayrollDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, payrollerrors.ErrRunNotFound):
		respondError(w, r, http.StatusNotFound, "payroll_run_not_found", err.Error())
	case errors.Is(err, payrollerrors.ErrRunAlreadyExists):
		respondError(w, r, http.StatusConflict, "payroll_run_exists", err.Error())
	case errors.Is(err, payrollerrors.ErrInvalidPeriod):
		respondValidationError(w, r, "invalid_period", err.Error(), []ValidationError{
			{Field: "period", Message: "period must be formatted YYYY-MM"},
		})
	case errors.Is(err, payrollerrors.ErrRunNotApprovable):
		respondError(w, r, http.StatusConflict, "payroll_run_not_approvable", err.Error())
	case errors.Is(err, payrollerrors.ErrRunNotDisbursable):
		respondError(w, r, http.StatusConflict, "payroll_run_not_disbursable", err.Error())
	case errors.Is(err, payrollerrors.ErrPayslipNotFound):
		respondError(w, r, http.StatusNotFound, "payslip_not_found", err.Error())
	default:
		s.logUnhandled(r, "payroll", err)
		respondError(w, r, http.StatusInternalServerError, "unhandled_error", "an unexpected error occurred")
	}
}
