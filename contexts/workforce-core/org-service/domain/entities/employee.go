package entities

import (
	"time"

	"github.com/google/uuid"
)

// Employee is one directory record inside a tenant's organization.
type Employee struct {
	EmployeeID   uuid.UUID
	TenantID     uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Title        string
	Department   string
	ManagerID    *uuid.UUID
	PortalAccess bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrgNode is one employee plus their transitive reports.
type OrgNode struct {
	Employee Employee
	Reports  []OrgNode
}

// Page is a bounded slice of the employee directory.
type Page struct {
	Employees []Employee
	Page      int
	PageSize  int
	Total     int
}
