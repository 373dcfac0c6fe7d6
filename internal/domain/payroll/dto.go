package payroll

import (
	"github.com/hrmstack/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PayDate   string `json:"pay_date"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if _, ok := validator.IsValidDate(r.PayDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	PayDate        string          `json:"pay_date"`
	Status         string          `json:"status"`
	TotalGross     decimal.Decimal `json:"total_gross"`
	TotalDeduction decimal.Decimal `json:"total_deduction"`
	TotalNet       decimal.Decimal `json:"total_net"`
	PayslipCount   int             `json:"payslip_count"`
}

// ========== PERIOD INPUT DTOs ==========

type AdhocLineRequest struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

type UpsertInputRequest struct {
	PeriodID          string            `json:"-"`
	EmployeeID        string            `json:"employee_id"`
	DaysPresent       *decimal.Decimal  `json:"days_present,omitempty"`
	DaysPayable       *decimal.Decimal  `json:"days_payable,omitempty"`
	OvertimeHours     *decimal.Decimal  `json:"overtime_hours,omitempty"`
	UnpaidLeaveDays   *decimal.Decimal  `json:"unpaid_leave_days,omitempty"`
	EncashedLeaveDays *decimal.Decimal  `json:"encashed_leave_days,omitempty"`
	AdhocLines        []AdhocLineRequest `json:"adhoc_lines,omitempty"`
}

func (r *UpsertInputRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	for field, v := range map[string]*decimal.Decimal{
		"days_present":        r.DaysPresent,
		"days_payable":        r.DaysPayable,
		"overtime_hours":      r.OvertimeHours,
		"unpaid_leave_days":   r.UnpaidLeaveDays,
		"encashed_leave_days": r.EncashedLeaveDays,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	for i, line := range r.AdhocLines {
		field := "adhoc_lines[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(line.Name) {
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "is required"})
		}
		if line.Kind != "earning" && line.Kind != "deduction" {
			errs = append(errs, validator.ValidationError{Field: field + ".kind", Message: "must be 'earning' or 'deduction'"})
		}
		if line.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InputResponse struct {
	ID                string             `json:"id"`
	PeriodID          string             `json:"period_id"`
	EmployeeID        string             `json:"employee_id"`
	DaysPresent       decimal.Decimal    `json:"days_present"`
	DaysPayable       decimal.Decimal    `json:"days_payable"`
	OvertimeHours     decimal.Decimal    `json:"overtime_hours"`
	UnpaidLeaveDays   decimal.Decimal    `json:"unpaid_leave_days"`
	EncashedLeaveDays decimal.Decimal    `json:"encashed_leave_days"`
	AdhocLines        []AdhocLineRequest `json:"adhoc_lines,omitempty"`
}

// ========== PAYSLIP DTOs ==========

type GeneratePayslipRequest struct {
	PeriodID   string `json:"-"`
	EmployeeID string `json:"employee_id"`
	// Regenerate voids an existing payslip for the same employee and
	// period (if still voidable) before generating a fresh one.
	Regenerate bool `json:"regenerate,omitempty"`
}

func (r *GeneratePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkGenerateRequest struct {
	PeriodID    string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // empty = all employees with an active assignment
	Regenerate  bool     `json:"regenerate,omitempty"`
}

type BulkSuccess struct {
	EmployeeID string `json:"employee_id"`
	PayslipID  string `json:"payslip_id"`
}

// BulkFailure records one employee whose generation failed. Kind is the
// machine-readable error class; Reason is the human-readable detail.
type BulkFailure struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
}

type BulkGenerateResponse struct {
	PeriodID  string          `json:"period_id"`
	Requested int             `json:"requested"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Succeeded []BulkSuccess   `json:"succeeded"`
	Failures  []BulkFailure   `json:"failures,omitempty"`
	TotalNet  decimal.Decimal `json:"total_net"`
}

type PayslipLineResponse struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Source  string          `json:"source"`
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

type PayslipResponse struct {
	ID              string                `json:"id"`
	PayslipNumber   string                `json:"payslip_number"`
	PeriodID        string                `json:"period_id"`
	PeriodName      *string               `json:"period_name,omitempty"`
	EmployeeID      string                `json:"employee_id"`
	EmployeeName    *string               `json:"employee_name,omitempty"`
	Currency        string                `json:"currency"`
	ProrationFactor decimal.Decimal       `json:"proration_factor"`
	GrossEarnings   decimal.Decimal       `json:"gross_earnings"`
	TaxableIncome   decimal.Decimal       `json:"taxable_income"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	TotalDeductions decimal.Decimal       `json:"total_deductions"`
	NetPay          decimal.Decimal       `json:"net_pay"`
	Status          string                `json:"status"`
	Lines           []PayslipLineResponse `json:"lines"`
	GeneratedAt     string                `json:"generated_at"`
}

type PayslipFilter struct {
	PeriodID   *string `json:"period_id,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}
