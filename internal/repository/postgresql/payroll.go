package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period *payroll.PayrollPeriod) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (name, start_date, end_date, pay_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		period.Name, period.StartDate, period.EndDate, period.PayDate, period.Status,
	).Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payroll period: %w", err)
	}
	return nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (*payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_date, end_date, pay_date, status,
			   total_gross, total_deduction, total_net, payslip_count,
			   created_at, updated_at
		FROM payroll_periods
		WHERE id = $1
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.PayDate, &p.Status,
		&p.TotalGross, &p.TotalDeduction, &p.TotalNet, &p.PayslipCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrPeriodNotFound
		}
		return nil, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return &p, nil
}

func (r *payrollRepository) FindOverlappingPeriod(ctx context.Context, start, end time.Time, excludeID *string) (*payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_date, end_date, pay_date, status,
			   total_gross, total_deduction, total_net, payslip_count,
			   created_at, updated_at
		FROM payroll_periods
		WHERE status <> 'cancelled'
		  AND start_date <= $2 AND end_date >= $1
		  AND ($3::uuid IS NULL OR id <> $3)
		LIMIT 1
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, start, end, excludeID).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.PayDate, &p.Status,
		&p.TotalGross, &p.TotalDeduction, &p.TotalNet, &p.PayslipCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrPeriodNotFound
		}
		return nil, fmt.Errorf("failed to find overlapping period: %w", err)
	}
	return &p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, status *payroll.PeriodStatus) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_date, end_date, pay_date, status,
			   total_gross, total_deduction, total_net, payslip_count,
			   created_at, updated_at
		FROM payroll_periods
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY start_date DESC
	`

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		var p payroll.PayrollPeriod
		err := rows.Scan(
			&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.PayDate, &p.Status,
			&p.TotalGross, &p.TotalDeduction, &p.TotalNet, &p.PayslipCount,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *payrollRepository) UpdatePeriodStatus(ctx context.Context, id string, status payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_periods SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

// RefreshPeriodTotals rolls gross, deduction and net sums of all non-void
// payslips back onto the period row.
func (r *payrollRepository) RefreshPeriodTotals(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods p SET
			total_gross = totals.gross,
			total_deduction = totals.deduction,
			total_net = totals.net,
			payslip_count = totals.count,
			updated_at = NOW()
		FROM (
			SELECT COALESCE(SUM(gross_earnings), 0) AS gross,
				   COALESCE(SUM(total_deductions), 0) AS deduction,
				   COALESCE(SUM(net_pay), 0) AS net,
				   COUNT(*) AS count
			FROM payslips
			WHERE period_id = $1 AND status <> 'void'
		) totals
		WHERE p.id = $1
	`

	if _, err := q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to refresh period totals: %w", err)
	}
	return nil
}

// ========== INPUTS ==========

func (r *payrollRepository) UpsertInput(ctx context.Context, input *payroll.PeriodInput) error {
	q := GetQuerier(ctx, r.db)

	adhoc, err := json.Marshal(input.AdhocLines)
	if err != nil {
		return fmt.Errorf("failed to marshal adhoc lines: %w", err)
	}

	query := `
		INSERT INTO period_inputs (
			period_id, employee_id, days_present, days_payable,
			overtime_hours, unpaid_leave_days, encashed_leave_days, adhoc_lines
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (period_id, employee_id) DO UPDATE SET
			days_present = EXCLUDED.days_present,
			days_payable = EXCLUDED.days_payable,
			overtime_hours = EXCLUDED.overtime_hours,
			unpaid_leave_days = EXCLUDED.unpaid_leave_days,
			encashed_leave_days = EXCLUDED.encashed_leave_days,
			adhoc_lines = EXCLUDED.adhoc_lines,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		input.PeriodID, input.EmployeeID, input.DaysPresent, input.DaysPayable,
		input.OvertimeHours, input.UnpaidLeaveDays, input.EncashedLeaveDays, adhoc,
	).Scan(&input.ID, &input.CreatedAt, &input.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert period input: %w", err)
	}
	return nil
}

func (r *payrollRepository) GetInput(ctx context.Context, periodID, employeeID string) (*payroll.PeriodInput, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period_id, employee_id, days_present, days_payable,
			   overtime_hours, unpaid_leave_days, encashed_leave_days, adhoc_lines,
			   created_at, updated_at
		FROM period_inputs
		WHERE period_id = $1 AND employee_id = $2
	`

	input, err := scanPeriodInput(q.QueryRow(ctx, query, periodID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrInputNotFound
		}
		return nil, fmt.Errorf("failed to get period input: %w", err)
	}
	return input, nil
}

func (r *payrollRepository) ListInputsByPeriod(ctx context.Context, periodID string) ([]payroll.PeriodInput, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, period_id, employee_id, days_present, days_payable,
			   overtime_hours, unpaid_leave_days, encashed_leave_days, adhoc_lines,
			   created_at, updated_at
		FROM period_inputs
		WHERE period_id = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period inputs: %w", err)
	}
	defer rows.Close()

	var inputs []payroll.PeriodInput
	for rows.Next() {
		input, err := scanPeriodInput(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period input: %w", err)
		}
		inputs = append(inputs, *input)
	}
	return inputs, rows.Err()
}

func scanPeriodInput(row pgx.Row) (*payroll.PeriodInput, error) {
	var input payroll.PeriodInput
	var adhoc []byte
	err := row.Scan(
		&input.ID, &input.PeriodID, &input.EmployeeID, &input.DaysPresent, &input.DaysPayable,
		&input.OvertimeHours, &input.UnpaidLeaveDays, &input.EncashedLeaveDays, &adhoc,
		&input.CreatedAt, &input.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(adhoc) > 0 {
		if err := json.Unmarshal(adhoc, &input.AdhocLines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal adhoc lines: %w", err)
		}
	}
	return &input, nil
}

// ========== PAYSLIPS ==========

func (r *payrollRepository) CreatePayslip(ctx context.Context, payslip *payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			payslip_number, period_id, employee_id, assignment_id, currency,
			proration_factor, gross_earnings, taxable_income, tax_amount,
			total_deductions, net_pay, status, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		payslip.PayslipNumber, payslip.PeriodID, payslip.EmployeeID, payslip.AssignmentID, payslip.Currency,
		payslip.ProrationFactor, payslip.GrossEarnings, payslip.TaxableIncome, payslip.TaxAmount,
		payslip.TotalDeductions, payslip.NetPay, payslip.Status, payslip.GeneratedAt,
	).Scan(&payslip.ID, &payslip.CreatedAt, &payslip.UpdatedAt)
	if err != nil {
		// uk_payslip_employee_period is partial: it only covers non-void
		// payslips, so voided slips never block regeneration.
		if strings.Contains(err.Error(), "uk_payslip_employee_period") {
			return payroll.ErrDuplicatePayslip
		}
		return fmt.Errorf("failed to create payslip: %w", err)
	}

	return r.insertLines(ctx, payslip)
}

func (r *payrollRepository) insertLines(ctx context.Context, payslip *payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	for i := range payslip.Lines {
		line := &payslip.Lines[i]
		line.PayslipID = payslip.ID
		err := q.QueryRow(ctx, `
			INSERT INTO payslip_lines (payslip_id, name, kind, source, amount, taxable, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, payslip.ID, line.Name, line.Kind, line.Source, line.Amount, line.Taxable, line.DisplayOrder).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert payslip line: %w", err)
		}
	}
	return nil
}

func (r *payrollRepository) ReplacePayslip(ctx context.Context, voidID string, payslip *payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payslips SET status = 'void', voided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status <> 'void'
	`, voidID)
	if err != nil {
		return fmt.Errorf("failed to void payslip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return r.CreatePayslip(ctx, payslip)
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string) (*payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.payslip_number, p.period_id, p.employee_id, p.assignment_id, p.currency,
			   p.proration_factor, p.gross_earnings, p.taxable_income, p.tax_amount,
			   p.total_deductions, p.net_pay, p.status, p.generated_at,
			   p.approved_at, p.paid_at, p.voided_at, p.created_at, p.updated_at,
			   e.full_name, pp.name
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		JOIN payroll_periods pp ON pp.id = p.period_id
		WHERE p.id = $1
	`

	payslip, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrPayslipNotFound
		}
		return nil, fmt.Errorf("failed to get payslip: %w", err)
	}
	if err := r.loadLines(ctx, payslip); err != nil {
		return nil, err
	}
	return payslip, nil
}

func (r *payrollRepository) GetActivePayslip(ctx context.Context, periodID, employeeID string) (*payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.payslip_number, p.period_id, p.employee_id, p.assignment_id, p.currency,
			   p.proration_factor, p.gross_earnings, p.taxable_income, p.tax_amount,
			   p.total_deductions, p.net_pay, p.status, p.generated_at,
			   p.approved_at, p.paid_at, p.voided_at, p.created_at, p.updated_at,
			   e.full_name, pp.name
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		JOIN payroll_periods pp ON pp.id = p.period_id
		WHERE p.period_id = $1 AND p.employee_id = $2 AND p.status <> 'void'
	`

	payslip, err := scanPayslip(q.QueryRow(ctx, query, periodID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payroll.ErrPayslipNotFound
		}
		return nil, fmt.Errorf("failed to get active payslip: %w", err)
	}
	return payslip, nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []any{}
	argIdx := 1
	if filter.PeriodID != nil {
		where += fmt.Sprintf(" AND p.period_id = $%d", argIdx)
		args = append(args, *filter.PeriodID)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM payslips p " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.payslip_number, p.period_id, p.employee_id, p.assignment_id, p.currency,
			   p.proration_factor, p.gross_earnings, p.taxable_income, p.tax_amount,
			   p.total_deductions, p.net_pay, p.status, p.generated_at,
			   p.approved_at, p.paid_at, p.voided_at, p.created_at, p.updated_at,
			   e.full_name, pp.name
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		JOIN payroll_periods pp ON pp.id = p.period_id
		%s
		ORDER BY p.payslip_number
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		payslip, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, *payslip)
	}
	return payslips, total, rows.Err()
}

func (r *payrollRepository) loadLines(ctx context.Context, payslip *payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, payslip_id, name, kind, source, amount, taxable, display_order
		FROM payslip_lines
		WHERE payslip_id = $1
		ORDER BY display_order
	`, payslip.ID)
	if err != nil {
		return fmt.Errorf("failed to load payslip lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line payroll.PayslipLine
		err := rows.Scan(&line.ID, &line.PayslipID, &line.Name, &line.Kind, &line.Source, &line.Amount, &line.Taxable, &line.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to scan payslip line: %w", err)
		}
		payslip.Lines = append(payslip.Lines, line)
	}
	return rows.Err()
}

func scanPayslip(row pgx.Row) (*payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.PayslipNumber, &p.PeriodID, &p.EmployeeID, &p.AssignmentID, &p.Currency,
		&p.ProrationFactor, &p.GrossEarnings, &p.TaxableIncome, &p.TaxAmount,
		&p.TotalDeductions, &p.NetPay, &p.Status, &p.GeneratedAt,
		&p.ApprovedAt, &p.PaidAt, &p.VoidedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.PeriodName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payrollRepository) UpdatePayslipStatus(ctx context.Context, id string, status payroll.PayslipStatus, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	var column string
	switch status {
	case payroll.PayslipStatusApproved:
		column = "approved_at"
	case payroll.PayslipStatusPaid:
		column = "paid_at"
	case payroll.PayslipStatusVoid:
		column = "voided_at"
	default:
		return payroll.ErrPayslipTransition
	}

	query := fmt.Sprintf(`
		UPDATE payslips SET status = $2, %s = $3, updated_at = NOW() WHERE id = $1
	`, column)
	tag, err := q.Exec(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("failed to update payslip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}

// NextPayslipSequence bumps the per-year counter row atomically; the row
// lock taken by the upsert serializes concurrent callers.
func (r *payrollRepository) NextPayslipSequence(ctx context.Context, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	var seq int
	err := q.QueryRow(ctx, `
		INSERT INTO payslip_counters (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = payslip_counters.seq + 1
		RETURNING seq
	`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to advance payslip sequence: %w", err)
	}
	return seq, nil
}
