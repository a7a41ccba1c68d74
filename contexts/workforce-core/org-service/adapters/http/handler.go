package httpadapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"paygrid/contexts/workforce-core/org-service/application"
	"paygrid/contexts/workforce-core/org-service/domain/entities"
	httptransport "paygrid/contexts/workforce-core/org-service/transport/http"
)

// Handler maps HTTP DTOs to application queries.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListEmployeesHandler(ctx context.Context, tenantID uuid.UUID, page int, pageSize int) (httptransport.EmployeePageResponse, error) {
	result, err := h.Service.ListEmployees(ctx, tenantID, page, pageSize)
	if err != nil {
		return httptransport.EmployeePageResponse{}, err
	}
	return httptransport.EmployeePageResponse{
		Employees: employeeResponses(result.Employees),
		Page:      result.Page,
		PageSize:  result.PageSize,
		Total:     result.Total,
	}, nil
}

func (h Handler) GetEmployeeHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (httptransport.EmployeeResponse, error) {
	employee, err := h.Service.GetEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return httptransport.EmployeeResponse{}, err
	}
	return employeeResponse(employee), nil
}

func (h Handler) StructureHandler(ctx context.Context, tenantID uuid.UUID) (httptransport.StructureResponse, error) {
	roots, err := h.Service.Structure(ctx, tenantID)
	if err != nil {
		return httptransport.StructureResponse{}, err
	}
	out := make([]httptransport.OrgNodeResponse, 0, len(roots))
	for _, node := range roots {
		out = append(out, orgNodeResponse(node))
	}
	return httptransport.StructureResponse{Roots: out}, nil
}

func (h Handler) ManagerChainHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (httptransport.ManagerChainResponse, error) {
	chain, err := h.Service.ManagerChain(ctx, tenantID, employeeID)
	if err != nil {
		return httptransport.ManagerChainResponse{}, err
	}
	return httptransport.ManagerChainResponse{Chain: employeeResponses(chain)}, nil
}

func (h Handler) DirectReportsHandler(ctx context.Context, tenantID uuid.UUID, managerID uuid.UUID) (httptransport.DirectReportsResponse, error) {
	reports, err := h.Service.DirectReports(ctx, tenantID, managerID)
	if err != nil {
		return httptransport.DirectReportsResponse{}, err
	}
	return httptransport.DirectReportsResponse{Reports: employeeResponses(reports)}, nil
}

func (h Handler) UpdatePortalAccessHandler(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, request httptransport.UpdatePortalAccessRequest) (httptransport.EmployeeResponse, error) {
	employee, err := h.Service.SetPortalAccess(ctx, tenantID, employeeID, request.Enabled)
	if err != nil {
		return httptransport.EmployeeResponse{}, err
	}
	return employeeResponse(employee), nil
}

func employeeResponse(employee entities.Employee) httptransport.EmployeeResponse {
	var managerID *string
	if employee.ManagerID != nil {
		value := employee.ManagerID.String()
		managerID = &value
	}
	return httptransport.EmployeeResponse{
		EmployeeID:   employee.EmployeeID.String(),
		FirstName:    employee.FirstName,
		LastName:     employee.LastName,
		Email:        employee.Email,
		Title:        employee.Title,
		Department:   employee.Department,
		ManagerID:    managerID,
		PortalAccess: employee.PortalAccess,
		CreatedAt:    employee.CreatedAt,
		UpdatedAt:    employee.UpdatedAt,
	}
}

func employeeResponses(employees []entities.Employee) []httptransport.EmployeeResponse {
	out := make([]httptransport.EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		out = append(out, employeeResponse(employee))
	}
	return out
}

func orgNodeResponse(node entities.OrgNode) httptransport.OrgNodeResponse {
	reports := make([]httptransport.OrgNodeResponse, 0, len(node.Reports))
	for _, child := range node.Reports {
		reports = append(reports, orgNodeResponse(child))
	}
	return httptransport.OrgNodeResponse{
		Employee: employeeResponse(node.Employee),
		Reports:  reports,
	}
}
