package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPeriodNotFound       = errors.New("payroll period not found")
	ErrPeriodOverlap        = errors.New("payroll period overlaps an existing period")
	ErrPeriodNotEditable    = errors.New("payroll period is not in an editable status")
	ErrInvalidPeriodRange   = errors.New("period end date must not be before start date")
	ErrPeriodTransition     = errors.New("invalid payroll period status transition")
	ErrInputNotFound        = errors.New("period input not found")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrDuplicatePayslip     = errors.New("payslip already exists for this employee and period")
	ErrPayslipTransition    = errors.New("invalid payslip status transition")
	ErrNoActiveAssignment   = errors.New("employee has no active salary assignment for this period")
	ErrNegativeNetPay       = errors.New("net pay is negative")
	ErrInvalidPeriodInput   = errors.New("invalid period input")
	ErrPeriodNotProcessable = errors.New("payroll period must be in draft or processing status to generate payslips")
)

// NegativeNetPayError carries the offending amounts so callers can report
// exactly how far deductions exceeded earnings.
type NegativeNetPayError struct {
	EmployeeID string
	Gross      decimal.Decimal
	Deductions decimal.Decimal
}

func (e *NegativeNetPayError) Error() string {
	return fmt.Sprintf("net pay for employee %s is negative: gross %s, deductions %s",
		e.EmployeeID, e.Gross.StringFixed(2), e.Deductions.StringFixed(2))
}

func (e *NegativeNetPayError) Unwrap() error {
	return ErrNegativeNetPay
}

// InputError flags a rejected value on a period input.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid period input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidPeriodInput
}

// TransitionError reports a disallowed lifecycle move.
type TransitionError struct {
	Entity string // "period" or "payslip"
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	if e.Entity == "payslip" {
		return ErrPayslipTransition
	}
	return ErrPeriodTransition
}
