package entities

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the payroll run lifecycle state.
type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusApproved  RunStatus = "approved"
	RunStatusDisbursed RunStatus = "disbursed"
)

// PayrollRun is one payroll cycle for a tenant and period (YYYY-MM).
type PayrollRun struct {
	RunID       uuid.UUID
	TenantID    uuid.UUID
	Period      string
	Status      RunStatus
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	DisbursedAt *time.Time
}

// Payslip is one employee's settled pay statement for a period.
type Payslip struct {
	PayslipID  uuid.UUID
	TenantID   uuid.UUID
	EmployeeID uuid.UUID
	RunID      uuid.UUID
	Period     string
	Gross      int64 // minor currency units
	Net        int64
	Currency   string
	IssuedAt   time.Time
}
