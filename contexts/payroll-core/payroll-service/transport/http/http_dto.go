package http

import "time"

type CreateRunRequest struct {
	Period string `json:"period"`
}

type RunResponse struct {
	RunID       string     `json:"runId"`
	Period      string     `json:"period"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	DisbursedAt *time.Time `json:"disbursedAt,omitempty"`
}

type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type PayslipResponse struct {
	PayslipID  string    `json:"payslipId"`
	EmployeeID string    `json:"employeeId"`
	RunID      string    `json:"runId"`
	Period     string    `json:"period"`
	Gross      int64     `json:"gross"`
	Net        int64     `json:"net"`
	Currency   string    `json:"currency"`
	IssuedAt   time.Time `json:"issuedAt"`
}

type ListPayslipsResponse struct {
	Payslips []PayslipResponse `json:"payslips"`
}

type PayslipEmailResponse struct {
	Status string `json:"status"`
}
