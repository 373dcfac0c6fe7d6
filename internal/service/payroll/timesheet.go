package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
)

var (
	weeksPerYear = decimal.NewFromInt(52)
	twelve       = decimal.NewFromInt(12)
)

// ProrationFactor returns actualDays/payableDays, always in (0, 1].
// Working more days than the period has payable days never pays more
// than the full salary. Zero attendance is rejected rather than paying
// an all-zero payslip: an unworked period is an administrative decision,
// not a computation.
func ProrationFactor(payableDays, actualDays decimal.Decimal) (decimal.Decimal, error) {
	if !payableDays.IsPositive() {
		return decimal.Zero, &payroll.InputError{Field: "days_payable", Reason: "must be positive"}
	}
	if !actualDays.IsPositive() {
		return decimal.Zero, &payroll.InputError{Field: "days_present", Reason: "must be positive"}
	}
	factor := actualDays.Div(payableDays)
	if factor.GreaterThan(decimal.NewFromInt(1)) {
		factor = decimal.NewFromInt(1)
	}
	return factor, nil
}

// OvertimePay derives an hourly rate from the annual salary and pays
// overtimeHours at that rate times the multiplier. Rounded half-up 2dp.
func OvertimePay(annualSalary, weeklyHours, overtimeHours, multiplier decimal.Decimal) (decimal.Decimal, error) {
	if !weeklyHours.IsPositive() {
		return decimal.Zero, &payroll.InputError{Field: "weekly_hours", Reason: "must be positive"}
	}
	if overtimeHours.IsNegative() {
		return decimal.Zero, &payroll.InputError{Field: "overtime_hours", Reason: "must be non-negative"}
	}
	hourly := annualSalary.Div(weeklyHours.Mul(weeksPerYear))
	return hourly.Mul(overtimeHours).Mul(multiplier).Round(2), nil
}

// LeaveEncashment pays out unused leave at the daily rate implied by the
// monthly salary and the standard working days per month.
func LeaveEncashment(monthlySalary, workingDaysPerMonth, leaveDays decimal.Decimal) (decimal.Decimal, error) {
	if !workingDaysPerMonth.IsPositive() {
		return decimal.Zero, &payroll.InputError{Field: "working_days_per_month", Reason: "must be positive"}
	}
	if leaveDays.IsNegative() {
		return decimal.Zero, &payroll.InputError{Field: "encashed_leave_days", Reason: "must be non-negative"}
	}
	daily := monthlySalary.Div(workingDaysPerMonth)
	return daily.Mul(leaveDays).Round(2), nil
}

// AnnualFromMonthly scales a monthly basic salary to its annual figure.
func AnnualFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}
