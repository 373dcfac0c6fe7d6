package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusCompleted  PeriodStatus = "completed"
	PeriodStatusPaid       PeriodStatus = "paid"
	PeriodStatusCancelled  PeriodStatus = "cancelled"
)

// CanTransitionTo reports whether the period lifecycle allows moving to next.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	switch s {
	case PeriodStatusDraft:
		return next == PeriodStatusProcessing || next == PeriodStatusCancelled
	case PeriodStatusProcessing:
		return next == PeriodStatusCompleted || next == PeriodStatusCancelled
	case PeriodStatusCompleted:
		return next == PeriodStatusPaid
	default:
		return false
	}
}

// PayrollPeriod - A pay cycle (typically one calendar month)
type PayrollPeriod struct {
	ID             string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	PayDate        time.Time
	Status         PeriodStatus
	TotalGross     decimal.Decimal
	TotalDeduction decimal.Decimal
	TotalNet       decimal.Decimal
	PayslipCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkingDays returns the number of Monday-Friday days in the period.
func (p *PayrollPeriod) WorkingDays() int {
	days := 0
	for d := p.StartDate; !d.After(p.EndDate); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// AdhocLine - A one-off earning or deduction attached to a period input
type AdhocLine struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"` // "earning" or "deduction"
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

// PeriodInput - Per-employee per-period attendance and adjustment data
type PeriodInput struct {
	ID                string
	PeriodID          string
	EmployeeID        string
	DaysPresent       decimal.Decimal
	DaysPayable       decimal.Decimal
	OvertimeHours     decimal.Decimal
	UnpaidLeaveDays   decimal.Decimal
	EncashedLeaveDays decimal.Decimal
	AdhocLines        []AdhocLine
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LineSource enum - where a payslip line came from
type LineSource string

const (
	LineSourceComponent  LineSource = "component"
	LineSourceOvertime   LineSource = "overtime"
	LineSourceEncashment LineSource = "encashment"
	LineSourceAdhoc      LineSource = "adhoc"
	LineSourceTax        LineSource = "tax"
)

// PayslipLine - One earning or deduction row on a payslip
type PayslipLine struct {
	ID           string
	PayslipID    string
	Name         string
	Kind         string // "earning" or "deduction"
	Source       LineSource
	Amount       decimal.Decimal
	Taxable      bool
	DisplayOrder int
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusGenerated PayslipStatus = "generated"
	PayslipStatusApproved  PayslipStatus = "approved"
	PayslipStatusPaid      PayslipStatus = "paid"
	PayslipStatusVoid      PayslipStatus = "void"
)

// Payslip - Generated payroll result for one employee in one period
type Payslip struct {
	ID              string
	PayslipNumber   string // PAY-YYYY-MM-NNNN
	PeriodID        string
	EmployeeID      string
	AssignmentID    string
	Currency        string
	ProrationFactor decimal.Decimal
	GrossEarnings   decimal.Decimal
	TaxableIncome   decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	Status          PayslipStatus
	Lines           []PayslipLine
	GeneratedAt     time.Time
	ApprovedAt      *time.Time
	PaidAt          *time.Time
	VoidedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	PeriodName   *string
}

// CanTransitionTo reports whether a payslip can move to next.
func (s PayslipStatus) CanTransitionTo(next PayslipStatus) bool {
	switch s {
	case PayslipStatusGenerated:
		return next == PayslipStatusApproved || next == PayslipStatusVoid
	case PayslipStatusApproved:
		return next == PayslipStatusPaid || next == PayslipStatusVoid
	default:
		return false
	}
}
