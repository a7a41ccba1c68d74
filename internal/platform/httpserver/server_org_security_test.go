package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"paygrid/contexts/workforce-core/org-service/domain/entities"
)

func seedEmployee(server *Server, tenantID uuid.UUID, lastName string) entities.Employee {
	employee := entities.Employee{
		EmployeeID: uuid.New(),
		TenantID:   tenantID,
		FirstName:  "Alex",
		LastName:   lastName,
		Email:      lastName + "@acme.test",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	server.org.Store.SeedEmployee(employee)
	return employee
}

func listEmployees(t *testing.T, server *Server, tenantID uuid.UUID) []string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("X-Tenant-Id", tenantID.String())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "manager")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var page struct {
		Employees []struct {
			EmployeeID string `json:"employeeId"`
		} `json:"employees"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	ids := make([]string, 0, len(page.Employees))
	for _, e := range page.Employees {
		ids = append(ids, e.EmployeeID)
	}
	return ids
}

func TestEmployeeListingIsTenantIsolated(t *testing.T) {
	server := newTestServer(nil)
	tenantA := uuid.New()
	tenantB := uuid.New()
	employeeA := seedEmployee(server, tenantA, "alpha")
	employeeB := seedEmployee(server, tenantB, "bravo")

	idsA := listEmployees(t, server, tenantA)
	idsB := listEmployees(t, server, tenantB)

	if len(idsA) != 1 || idsA[0] != employeeA.EmployeeID.String() {
		t.Fatalf("tenant A leak: %v", idsA)
	}
	if len(idsB) != 1 || idsB[0] != employeeB.EmployeeID.String() {
		t.Fatalf("tenant B leak: %v", idsB)
	}
}

func TestEmployeeListingIsolationUnderConcurrency(t *testing.T) {
	server := newTestServer(nil)
	tenantA := uuid.New()
	tenantB := uuid.New()
	employeeA := seedEmployee(server, tenantA, "alpha")
	employeeB := seedEmployee(server, tenantB, "bravo")

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(useA bool) {
			defer wg.Done()
			tenantID, want := tenantA, employeeA.EmployeeID.String()
			if !useA {
				tenantID, want = tenantB, employeeB.EmployeeID.String()
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
			req.Header.Set("X-Tenant-Id", tenantID.String())
			req.Header.Set("X-User-Id", uuid.NewString())
			req.Header.Set("X-User-Role", "manager")
			rr := httptest.NewRecorder()
			server.Handler().ServeHTTP(rr, req)

			var page struct {
				Employees []struct {
					EmployeeID string `json:"employeeId"`
				} `json:"employees"`
			}
			if rr.Code != http.StatusOK || json.Unmarshal(rr.Body.Bytes(), &page) != nil {
				errs <- "list request failed: " + rr.Body.String()
				return
			}
			if len(page.Employees) != 1 || page.Employees[0].EmployeeID != want {
				errs <- "cross-tenant row observed"
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	if msg, leaked := <-errs; leaked {
		t.Fatal(msg)
	}
}

func TestGetEmployeeFromAnotherTenantIsNotFound(t *testing.T) {
	server := newTestServer(nil)
	tenantA := uuid.New()
	tenantB := uuid.New()
	employeeA := seedEmployee(server, tenantA, "alpha")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees/"+employeeA.EmployeeID.String(), nil)
	req.Header.Set("X-Tenant-Id", tenantB.String())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "manager")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeError(t, rr); body.Code != "employee_not_found" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}
