package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for periods, inputs and payslips.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period *PayrollPeriod) error
	GetPeriodByID(ctx context.Context, id string) (*PayrollPeriod, error)
	FindOverlappingPeriod(ctx context.Context, start, end time.Time, excludeID *string) (*PayrollPeriod, error)
	ListPeriods(ctx context.Context, status *PeriodStatus) ([]PayrollPeriod, error)
	UpdatePeriodStatus(ctx context.Context, id string, status PeriodStatus) error
	RefreshPeriodTotals(ctx context.Context, id string) error

	// Inputs
	UpsertInput(ctx context.Context, input *PeriodInput) error
	GetInput(ctx context.Context, periodID, employeeID string) (*PeriodInput, error)
	ListInputsByPeriod(ctx context.Context, periodID string) ([]PeriodInput, error)

	// Payslips
	CreatePayslip(ctx context.Context, payslip *Payslip) error
	ReplacePayslip(ctx context.Context, voidID string, payslip *Payslip) error
	GetPayslipByID(ctx context.Context, id string) (*Payslip, error)
	GetActivePayslip(ctx context.Context, periodID, employeeID string) (*Payslip, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)
	UpdatePayslipStatus(ctx context.Context, id string, status PayslipStatus, at time.Time) error
	// NextPayslipSequence atomically increments and returns the per-year
	// payslip counter used for payslip numbering.
	NextPayslipSequence(ctx context.Context, year int) (int, error)
}
