package errors

import "errors"

var (
	ErrRunNotFound       = errors.New("payroll run not found")
	ErrRunAlreadyExists  = errors.New("payroll run already exists for period")
	ErrInvalidPeriod     = errors.New("period must be formatted YYYY-MM")
	ErrRunNotApprovable  = errors.New("payroll run is not in draft status")
	ErrRunNotDisbursable = errors.New("payroll run is not in approved status")
	ErrPayslipNotFound   = errors.New("payslip not found")
)
