package application

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/workforce-core/org-service/domain/entities"
	domainerrors "paygrid/contexts/workforce-core/org-service/domain/errors"
	"paygrid/contexts/workforce-core/org-service/ports"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200

	// maxChainDepth bounds the manager-chain walk against reference cycles
	// in stored data.
	maxChainDepth = 64
)

// Service answers org-structure queries and administers portal access.
type Service struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

// ListEmployees returns one page of the directory. Page numbering is 1-based;
// out-of-range sizes clamp to the configured maximum.
func (s Service) ListEmployees(ctx context.Context, tenantID uuid.UUID, page int, pageSize int) (entities.Page, error) {
	if page < 0 || pageSize < 0 {
		return entities.Page{}, domainerrors.ErrInvalidPage
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	employees, total, err := s.Repository.ListEmployees(ctx, tenantID, (page-1)*pageSize, pageSize)
	if err != nil {
		return entities.Page{}, err
	}
	return entities.Page{
		Employees: employees,
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
	}, nil
}

func (s Service) GetEmployee(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (entities.Employee, error) {
	return s.Repository.GetEmployee(ctx, tenantID, employeeID)
}

// Structure builds the reporting tree for one tenant. Employees whose manager
// is unset or missing from the tenant become roots.
func (s Service) Structure(ctx context.Context, tenantID uuid.UUID) ([]entities.OrgNode, error) {
	employees, err := s.Repository.ListAllEmployees(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entities.Employee, len(employees))
	for _, employee := range employees {
		byID[employee.EmployeeID] = employee
	}

	children := make(map[uuid.UUID][]entities.Employee)
	var roots []entities.Employee
	for _, employee := range employees {
		if employee.ManagerID == nil {
			roots = append(roots, employee)
			continue
		}
		if _, ok := byID[*employee.ManagerID]; !ok {
			roots = append(roots, employee)
			continue
		}
		children[*employee.ManagerID] = append(children[*employee.ManagerID], employee)
	}

	sortEmployees(roots)
	var build func(employee entities.Employee, depth int) entities.OrgNode
	build = func(employee entities.Employee, depth int) entities.OrgNode {
		node := entities.OrgNode{Employee: employee}
		if depth >= maxChainDepth {
			return node
		}
		reports := children[employee.EmployeeID]
		sortEmployees(reports)
		for _, report := range reports {
			node.Reports = append(node.Reports, build(report, depth+1))
		}
		return node
	}

	out := make([]entities.OrgNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root, 0))
	}
	return out, nil
}

// ManagerChain walks upward from an employee to the top of the tenant's
// hierarchy, nearest manager first.
func (s Service) ManagerChain(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID) ([]entities.Employee, error) {
	employee, err := s.Repository.GetEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}

	var chain []entities.Employee
	visited := map[uuid.UUID]struct{}{employee.EmployeeID: {}}
	current := employee
	for current.ManagerID != nil && len(chain) < maxChainDepth {
		if _, seen := visited[*current.ManagerID]; seen {
			s.logger().Warn("manager chain cycle detected",
				"event", "org_manager_chain_cycle",
				"module", "workforce-core/org-service",
				"layer", "application",
				"tenant_id", tenantID.String(),
				"employee_id", employeeID.String(),
			)
			break
		}
		manager, err := s.Repository.GetEmployee(ctx, tenantID, *current.ManagerID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrEmployeeNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, manager)
		visited[manager.EmployeeID] = struct{}{}
		current = manager
	}
	return chain, nil
}

// DirectReports lists the employees reporting to one manager.
func (s Service) DirectReports(ctx context.Context, tenantID uuid.UUID, managerID uuid.UUID) ([]entities.Employee, error) {
	if _, err := s.Repository.GetEmployee(ctx, tenantID, managerID); err != nil {
		if errors.Is(err, domainerrors.ErrEmployeeNotFound) {
			return nil, domainerrors.ErrManagerNotFound
		}
		return nil, err
	}
	reports, err := s.Repository.ListDirectReports(ctx, tenantID, managerID)
	if err != nil {
		return nil, err
	}
	sortEmployees(reports)
	return reports, nil
}

// SetPortalAccess toggles the employee self-service portal flag.
func (s Service) SetPortalAccess(ctx context.Context, tenantID uuid.UUID, employeeID uuid.UUID, enabled bool) (entities.Employee, error) {
	employee, err := s.Repository.SetPortalAccess(ctx, tenantID, employeeID, enabled, s.now())
	if err != nil {
		return entities.Employee{}, err
	}

	s.logger().Info("portal access updated",
		"event", "org_portal_access_updated",
		"module", "workforce-core/org-service",
		"layer", "application",
		"tenant_id", tenantID.String(),
		"employee_id", employeeID.String(),
		"enabled", enabled,
	)
	return employee, nil
}

func sortEmployees(employees []entities.Employee) {
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].LastName == employees[j].LastName {
			return employees[i].FirstName < employees[j].FirstName
		}
		return employees[i].LastName < employees[j].LastName
	})
}
