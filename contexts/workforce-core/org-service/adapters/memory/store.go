package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/workforce-core/org-service/domain/entities"
	domainerrors "paygrid/contexts/workforce-core/org-service/domain/errors"
)

// Store is an in-memory directory adapter for tests and local wiring.
type Store struct {
	mu        sync.RWMutex
	employees map[uuid.UUID]entities.Employee

	nowOverride func() time.Time
}

func NewStore() *Store {
	return &Store{employees: make(map[uuid.UUID]entities.Employee)}
}

// SetNow overrides the clock for deterministic tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowOverride = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	override := s.nowOverride
	s.mu.RUnlock()
	if override != nil {
		return override()
	}
	return time.Now().UTC()
}

// SeedEmployee inserts an employee directly. Test helper.
func (s *Store) SeedEmployee(employee entities.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[employee.EmployeeID] = employee
}

func (s *Store) ListEmployees(_ context.Context, tenantID uuid.UUID, offset int, limit int) ([]entities.Employee, int, error) {
	all := s.tenantEmployees(tenantID)
	total := len(all)
	if offset >= total {
		return []entities.Employee{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Store) ListAllEmployees(_ context.Context, tenantID uuid.UUID) ([]entities.Employee, error) {
	return s.tenantEmployees(tenantID), nil
}

func (s *Store) GetEmployee(_ context.Context, tenantID uuid.UUID, employeeID uuid.UUID) (entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.employees[employeeID]
	if !ok || employee.TenantID != tenantID {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	return employee, nil
}

func (s *Store) ListDirectReports(_ context.Context, tenantID uuid.UUID, managerID uuid.UUID) ([]entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Employee, 0)
	for _, employee := range s.employees {
		if employee.TenantID != tenantID || employee.ManagerID == nil {
			continue
		}
		if *employee.ManagerID == managerID {
			out = append(out, employee)
		}
	}
	return out, nil
}

func (s *Store) SetPortalAccess(_ context.Context, tenantID uuid.UUID, employeeID uuid.UUID, enabled bool, updatedAt time.Time) (entities.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	employee, ok := s.employees[employeeID]
	if !ok || employee.TenantID != tenantID {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	employee.PortalAccess = enabled
	employee.UpdatedAt = updatedAt
	s.employees[employeeID] = employee
	return employee, nil
}

func (s *Store) tenantEmployees(tenantID uuid.UUID) []entities.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Employee, 0)
	for _, employee := range s.employees {
		if employee.TenantID == tenantID {
			out = append(out, employee)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName == out[j].LastName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out
}
