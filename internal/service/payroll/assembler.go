package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	salarysvc "github.com/hrmstack/payroll-engine-go/internal/service/salary"
	taxsvc "github.com/hrmstack/payroll-engine-go/internal/service/tax"
)

// AssemblyRates carries the tunable payroll constants, sourced from config.
type AssemblyRates struct {
	OvertimeMultiplier  decimal.Decimal
	WeeklyHours         decimal.Decimal
	WorkingDaysPerMonth decimal.Decimal
}

// AssemblyInput is everything Assemble needs, loaded up front so the
// assembly itself touches no I/O.
type AssemblyInput struct {
	Employee   *employee.Employee
	Assignment *salary.EmployeeSalaryAssignment
	Period     *payroll.PayrollPeriod
	Input      *payroll.PeriodInput // nil means full attendance, no extras
	Plan       *salarysvc.ResolutionPlan
	SlabTable  *tax.SlabTable
	Rates      AssemblyRates
}

// Assemble computes one payslip: proration, component resolution,
// overtime and encashment lines, ad-hoc adjustments, tax, totals. It is
// deterministic for identical input and persists nothing. A negative net
// pay aborts with NegativeNetPayError and no payslip.
func Assemble(in AssemblyInput) (*payroll.Payslip, error) {
	payableDays := decimal.NewFromInt(int64(in.Period.WorkingDays()))
	presentDays := payableDays
	overtimeHours := decimal.Zero
	encashedDays := decimal.Zero
	unpaidDays := decimal.Zero
	var adhoc []payroll.AdhocLine
	if in.Input != nil {
		if in.Input.DaysPayable.IsPositive() {
			payableDays = in.Input.DaysPayable
			presentDays = payableDays
		}
		if in.Input.DaysPresent.IsPositive() {
			presentDays = in.Input.DaysPresent
		}
		overtimeHours = in.Input.OvertimeHours
		encashedDays = in.Input.EncashedLeaveDays
		unpaidDays = in.Input.UnpaidLeaveDays
		adhoc = in.Input.AdhocLines
	}
	presentDays = presentDays.Sub(unpaidDays)
	if presentDays.IsNegative() {
		return nil, &payroll.InputError{Field: "unpaid_leave_days", Reason: "exceeds days present"}
	}

	factor, err := ProrationFactor(payableDays, presentDays)
	if err != nil {
		return nil, err
	}

	resolved, err := in.Plan.Resolve(in.Assignment.BasicSalary, factor)
	if err != nil {
		return nil, err
	}

	var lines []payroll.PayslipLine
	order := 0
	for _, name := range resolved.Order {
		component, _ := in.Plan.Component(name)
		lines = append(lines, payroll.PayslipLine{
			Name:         name,
			Kind:         string(component.Kind),
			Source:       payroll.LineSourceComponent,
			Amount:       resolved.Values[name],
			Taxable:      component.Taxable,
			DisplayOrder: order,
		})
		order++
	}

	gross := resolved.GrossEarnings
	taxable := resolved.TaxableEarnings
	deductions := resolved.TotalDeductions

	if overtimeHours.IsPositive() {
		annual := AnnualFromMonthly(in.Assignment.BasicSalary)
		overtime, err := OvertimePay(annual, in.Rates.WeeklyHours, overtimeHours, in.Rates.OvertimeMultiplier)
		if err != nil {
			return nil, err
		}
		lines = append(lines, payroll.PayslipLine{
			Name:         "Overtime",
			Kind:         string(salary.ComponentKindEarning),
			Source:       payroll.LineSourceOvertime,
			Amount:       overtime,
			Taxable:      true,
			DisplayOrder: order,
		})
		order++
		gross = gross.Add(overtime)
		taxable = taxable.Add(overtime)
	}

	if encashedDays.IsPositive() {
		encashment, err := LeaveEncashment(in.Assignment.BasicSalary, in.Rates.WorkingDaysPerMonth, encashedDays)
		if err != nil {
			return nil, err
		}
		lines = append(lines, payroll.PayslipLine{
			Name:         "Leave Encashment",
			Kind:         string(salary.ComponentKindEarning),
			Source:       payroll.LineSourceEncashment,
			Amount:       encashment,
			Taxable:      true,
			DisplayOrder: order,
		})
		order++
		gross = gross.Add(encashment)
		taxable = taxable.Add(encashment)
	}

	for _, line := range adhoc {
		amount := line.Amount.Round(2)
		lines = append(lines, payroll.PayslipLine{
			Name:         line.Name,
			Kind:         line.Kind,
			Source:       payroll.LineSourceAdhoc,
			Amount:       amount,
			Taxable:      line.Taxable,
			DisplayOrder: order,
		})
		order++
		if line.Kind == string(salary.ComponentKindEarning) {
			gross = gross.Add(amount)
			if line.Taxable {
				taxable = taxable.Add(amount)
			}
		} else {
			deductions = deductions.Add(amount)
		}
	}

	taxAmount, err := taxsvc.Calculate(taxable, in.SlabTable)
	if err != nil {
		return nil, err
	}
	if taxAmount.IsPositive() {
		lines = append(lines, payroll.PayslipLine{
			Name:         "Income Tax",
			Kind:         string(salary.ComponentKindDeduction),
			Source:       payroll.LineSourceTax,
			Amount:       taxAmount,
			DisplayOrder: order,
		})
		deductions = deductions.Add(taxAmount)
	}

	net := gross.Sub(deductions)
	if net.IsNegative() {
		return nil, &payroll.NegativeNetPayError{
			EmployeeID: in.Employee.ID,
			Gross:      gross,
			Deductions: deductions,
		}
	}

	return &payroll.Payslip{
		PeriodID:        in.Period.ID,
		EmployeeID:      in.Employee.ID,
		AssignmentID:    in.Assignment.ID,
		Currency:        in.Assignment.Currency,
		ProrationFactor: factor,
		GrossEarnings:   gross,
		TaxableIncome:   taxable,
		TaxAmount:       taxAmount,
		TotalDeductions: deductions,
		NetPay:          net,
		Status:          payroll.PayslipStatusGenerated,
		Lines:           lines,
	}, nil
}
