package httpadapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"paygrid/contexts/payroll-core/payroll-service/application"
	"paygrid/contexts/payroll-core/payroll-service/domain/entities"
	httptransport "paygrid/contexts/payroll-core/payroll-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListRunsHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.ListRunsResponse, error) {
	runs, err := h.Service.ListRuns(ctx, tenantID)
	if err != nil {
		return httptransport.ListRunsResponse{}, err
	}
	out := make([]httptransport.RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runResponse(run))
	}
	return httptransport.ListRunsResponse{Runs: out}, nil
}

func (h Handler) CreateRunHandler(ctx context.Context, tenantID uuid.UUID, createdBy uuid.UUID, request httptransport.CreateRunRequest) (httptransport.RunResponse, error) {
	run, err := h.Service.CreateRun(ctx, tenantID, application.CreateRunCommand{
		Period:    request.Period,
		CreatedBy: createdBy,
	})
	if err != nil {
		return httptransport.RunResponse{}, err
	}
	return runResponse(run), nil
}

func (h Handler) ApproveRunHandler(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (httptransport.RunResponse, error) {
	run, err := h.Service.ApproveRun(ctx, tenantID, runID)
	if err != nil {
		return httptransport.RunResponse{}, err
	}
	return runResponse(run), nil
}

func (h Handler) DisburseRunHandler(ctx context.Context, tenantID uuid.UUID, runID uuid.UUID) (httptransport.RunResponse, error) {
	run, err := h.Service.DisburseRun(ctx, tenantID, runID)
	if err != nil {
		return httptransport.RunResponse{}, err
	}
	return runResponse(run), nil
}

func (h Handler) ListPayslipsHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (httptransport.ListPayslipsResponse, error) {
	payslips, err := h.Service.ListPayslips(ctx, tenantID, employeeID)
	if err != nil {
		return httptransport.ListPayslipsResponse{}, err
	}
	out := make([]httptransport.PayslipResponse, 0, len(payslips))
	for _, payslip := range payslips {
		out = append(out, payslipResponse(payslip))
	}
	return httptransport.ListPayslipsResponse{Payslips: out}, nil
}

func (h Handler) GetPayslipHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (httptransport.PayslipResponse, error) {
	payslip, err := h.Service.GetPayslip(ctx, tenantID, employeeID, period)
	if err != nil {
		return httptransport.PayslipResponse{}, err
	}
	return payslipResponse(payslip), nil
}

func (h Handler) EmailPayslipHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, period string) (httptransport.PayslipEmailResponse, error) {
	if err := h.Service.RequestPayslipEmail(ctx, tenantID, employeeID, period); err != nil {
		return httptransport.PayslipEmailResponse{}, err
	}
	return httptransport.PayslipEmailResponse{Status: "queued"}, nil
}

func runResponse(run entities.PayrollRun) httptransport.RunResponse {
	return httptransport.RunResponse{
		RunID:       run.RunID.String(),
		Period:      run.Period,
		Status:      string(run.Status),
		CreatedBy:   run.CreatedBy.String(),
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
		ApprovedAt:  run.ApprovedAt,
		DisbursedAt: run.DisbursedAt,
	}
}

func payslipResponse(payslip entities.Payslip) httptransport.PayslipResponse {
	return httptransport.PayslipResponse{
		PayslipID:  payslip.PayslipID.String(),
		EmployeeID: payslip.EmployeeID.String(),
		RunID:      payslip.RunID.String(),
		Period:     payslip.Period,
		Gross:      payslip.Gross,
		Net:        payslip.Net,
		Currency:   payslip.Currency,
		IssuedAt:   payslip.IssuedAt,
	}
}
