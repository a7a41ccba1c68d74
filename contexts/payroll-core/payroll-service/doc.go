// Package payroll owns payroll runs and payslips for a tenant: run lifecycle
// (draft, approved, disbursed), payslip lookup, and the outbox events consumed
// by the mail and disbursement collaborators.
//
// Payroll math (gross/net computation) happens upstream; this service stores
// and serves the resulting records and guards the run state machine.
package payroll
