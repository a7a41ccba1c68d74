package http

import "time"

type EmployeeResponse struct {
	EmployeeID   string    `json:"employeeId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	ManagerID    *string   `json:"managerId,omitempty"`
	PortalAccess bool      `json:"portalAccess"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type EmployeePageResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Page      int                `json:"page"`
	PageSize  int                `json:"pageSize"`
	Total     int                `json:"total"`
}

type OrgNodeResponse struct {
	Employee EmployeeResponse  `json:"employee"`
	Reports  []OrgNodeResponse `json:"reports"`
}

type StructureResponse struct {
	Roots []OrgNodeResponse `json:"roots"`
}

type ManagerChainResponse struct {
	Chain []EmployeeResponse `json:"chain"`
}

type DirectReportsResponse struct {
	Reports []EmployeeResponse `json:"reports"`
}

type UpdatePortalAccessRequest struct {
	Enabled bool `json:"enabled"`
}
