package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/hrmstack/payroll-engine-go/internal/repository/postgresql"
	salarysvc "github.com/hrmstack/payroll-engine-go/internal/service/salary"
)

type PayrollServiceImpl struct {
	db           *database.DB
	payrollRepo  payroll.PayrollRepository
	salaryRepo   salary.SalaryRepository
	employeeRepo employee.EmployeeRepository
	taxService   tax.TaxService
	rates        AssemblyRates
	bulkWorkers  int
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	salaryRepo salary.SalaryRepository,
	employeeRepo employee.EmployeeRepository,
	taxService tax.TaxService,
	rates AssemblyRates,
	bulkWorkers int,
) payroll.PayrollService {
	if bulkWorkers < 1 {
		bulkWorkers = 1
	}
	return &PayrollServiceImpl{
		db:           db,
		payrollRepo:  payrollRepo,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
		taxService:   taxService,
		rates:        rates,
		bulkWorkers:  bulkWorkers,
	}
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req *payroll.CreatePeriodRequest) (*payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	payDate, _ := time.Parse("2006-01-02", req.PayDate)

	overlap, err := s.payrollRepo.FindOverlappingPeriod(ctx, start, end, nil)
	if err != nil && !errors.Is(err, payroll.ErrPeriodNotFound) {
		return nil, err
	}
	if overlap != nil {
		return nil, payroll.ErrPeriodOverlap
	}

	period := &payroll.PayrollPeriod{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		PayDate:   payDate,
		Status:    payroll.PeriodStatusDraft,
	}
	if err := s.payrollRepo.CreatePeriod(ctx, period); err != nil {
		return nil, err
	}
	return periodToResponse(period), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (*payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return periodToResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, status *string) ([]payroll.PeriodResponse, error) {
	var filter *payroll.PeriodStatus
	if status != nil {
		st := payroll.PeriodStatus(*status)
		filter = &st
	}
	periods, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]payroll.PeriodResponse, 0, len(periods))
	for i := range periods {
		responses = append(responses, *periodToResponse(&periods[i]))
	}
	return responses, nil
}

func (s *PayrollServiceImpl) TransitionPeriod(ctx context.Context, id string, next payroll.PeriodStatus) (*payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !period.Status.CanTransitionTo(next) {
		return nil, &payroll.TransitionError{
			Entity: "period",
			From:   string(period.Status),
			To:     string(next),
		}
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.payrollRepo.UpdatePeriodStatus(txCtx, id, next); err != nil {
			return err
		}
		if next == payroll.PeriodStatusCompleted {
			return s.payrollRepo.RefreshPeriodTotals(txCtx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return periodToResponse(updated), nil
}

// ========== INPUTS ==========

func (s *PayrollServiceImpl) UpsertInput(ctx context.Context, req *payroll.UpsertInputRequest) (*payroll.InputResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if period.Status != payroll.PeriodStatusDraft && period.Status != payroll.PeriodStatusProcessing {
		return nil, payroll.ErrPeriodNotEditable
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	input := &payroll.PeriodInput{
		PeriodID:   req.PeriodID,
		EmployeeID: req.EmployeeID,
	}
	if req.DaysPresent != nil {
		input.DaysPresent = *req.DaysPresent
	}
	if req.DaysPayable != nil {
		input.DaysPayable = *req.DaysPayable
	}
	if req.OvertimeHours != nil {
		input.OvertimeHours = *req.OvertimeHours
	}
	if req.UnpaidLeaveDays != nil {
		input.UnpaidLeaveDays = *req.UnpaidLeaveDays
	}
	if req.EncashedLeaveDays != nil {
		input.EncashedLeaveDays = *req.EncashedLeaveDays
	}
	for _, line := range req.AdhocLines {
		input.AdhocLines = append(input.AdhocLines, payroll.AdhocLine{
			Name:    line.Name,
			Kind:    line.Kind,
			Amount:  line.Amount,
			Taxable: line.Taxable,
		})
	}

	if err := s.payrollRepo.UpsertInput(ctx, input); err != nil {
		return nil, err
	}
	return inputToResponse(input), nil
}

func (s *PayrollServiceImpl) ListInputs(ctx context.Context, periodID string) ([]payroll.InputResponse, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID); err != nil {
		return nil, err
	}
	inputs, err := s.payrollRepo.ListInputsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	responses := make([]payroll.InputResponse, 0, len(inputs))
	for i := range inputs {
		responses = append(responses, *inputToResponse(&inputs[i]))
	}
	return responses, nil
}

// ========== GENERATION ==========

// generationContext holds the per-run state shared across every employee:
// the period, the active slab table, and compiled resolution plans keyed
// by structure ID.
type generationContext struct {
	period    *payroll.PayrollPeriod
	slabTable *tax.SlabTable

	mu    sync.Mutex
	plans map[string]*salarysvc.ResolutionPlan
}

func (s *PayrollServiceImpl) newGenerationContext(ctx context.Context, periodID string) (*generationContext, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != payroll.PeriodStatusDraft && period.Status != payroll.PeriodStatusProcessing {
		return nil, payroll.ErrPeriodNotProcessable
	}
	slabTable, err := s.taxService.ActiveTable(ctx, period.EndDate)
	if err != nil {
		return nil, err
	}
	return &generationContext{
		period:    period,
		slabTable: slabTable,
		plans:     make(map[string]*salarysvc.ResolutionPlan),
	}, nil
}

// planFor compiles a structure's resolution plan once per run and caches it.
func (s *PayrollServiceImpl) planFor(ctx context.Context, gen *generationContext, structureID string) (*salarysvc.ResolutionPlan, error) {
	gen.mu.Lock()
	plan, ok := gen.plans[structureID]
	gen.mu.Unlock()
	if ok {
		return plan, nil
	}

	structure, err := s.salaryRepo.GetStructureByID(ctx, structureID)
	if err != nil {
		return nil, err
	}
	plan, err = salarysvc.CompilePlan(structure)
	if err != nil {
		return nil, err
	}

	gen.mu.Lock()
	gen.plans[structureID] = plan
	gen.mu.Unlock()
	return plan, nil
}

// generateOne assembles and persists a single payslip. It is the unit of
// work for both single and bulk generation.
func (s *PayrollServiceImpl) generateOne(ctx context.Context, gen *generationContext, employeeID string, regenerate bool) (*payroll.Payslip, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.EmployableOn(gen.period.StartDate, gen.period.EndDate) {
		return nil, employee.ErrEmployeeInactive
	}

	assignment, err := s.salaryRepo.GetActiveAssignment(ctx, employeeID, gen.period.EndDate)
	if err != nil {
		if errors.Is(err, salary.ErrAssignmentNotFound) {
			return nil, payroll.ErrNoActiveAssignment
		}
		return nil, err
	}

	plan, err := s.planFor(ctx, gen, assignment.SalaryStructureID)
	if err != nil {
		return nil, err
	}

	input, err := s.payrollRepo.GetInput(ctx, gen.period.ID, employeeID)
	if err != nil && !errors.Is(err, payroll.ErrInputNotFound) {
		return nil, err
	}

	payslip, err := Assemble(AssemblyInput{
		Employee:   emp,
		Assignment: assignment,
		Period:     gen.period,
		Input:      input,
		Plan:       plan,
		SlabTable:  gen.slabTable,
		Rates:      s.rates,
	})
	if err != nil {
		return nil, err
	}

	// Idempotency is enforced inside one transaction: a second generation
	// for the same (employee, period) either rejects or voids and
	// replaces, depending on the regenerate flag.
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		existing, err := s.payrollRepo.GetActivePayslip(txCtx, gen.period.ID, employeeID)
		if err != nil && !errors.Is(err, payroll.ErrPayslipNotFound) {
			return err
		}
		if existing != nil && !regenerate {
			return payroll.ErrDuplicatePayslip
		}
		if existing != nil && !existing.Status.CanTransitionTo(payroll.PayslipStatusVoid) {
			return &payroll.TransitionError{
				Entity: "payslip",
				From:   string(existing.Status),
				To:     string(payroll.PayslipStatusVoid),
			}
		}

		number, err := s.nextPayslipNumber(txCtx, gen.period)
		if err != nil {
			return err
		}
		payslip.PayslipNumber = number
		payslip.GeneratedAt = time.Now()

		if existing != nil {
			return s.payrollRepo.ReplacePayslip(txCtx, existing.ID, payslip)
		}
		return s.payrollRepo.CreatePayslip(txCtx, payslip)
	})
	if err != nil {
		return nil, err
	}
	return payslip, nil
}

// nextPayslipNumber produces PAY-YYYY-MM-NNNN, where NNNN is a zero-padded
// per-year sequence and YYYY-MM comes from the period start date.
func (s *PayrollServiceImpl) nextPayslipNumber(ctx context.Context, period *payroll.PayrollPeriod) (string, error) {
	year := period.StartDate.Year()
	seq, err := s.payrollRepo.NextPayslipSequence(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%04d-%02d-%04d", year, int(period.StartDate.Month()), seq), nil
}

func (s *PayrollServiceImpl) GeneratePayslip(ctx context.Context, req *payroll.GeneratePayslipRequest) (*payroll.PayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gen, err := s.newGenerationContext(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	payslip, err := s.generateOne(ctx, gen, req.EmployeeID, req.Regenerate)
	if err != nil {
		return nil, err
	}
	return payslipToResponse(payslip), nil
}

// ========== PAYSLIP LIFECYCLE ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (*payroll.PayslipResponse, error) {
	payslip, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return payslipToResponse(payslip), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) (*payroll.ListPayslipResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	payslips, total, err := s.payrollRepo.ListPayslips(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &payroll.ListPayslipResponse{
		Data:       make([]payroll.PayslipResponse, 0, len(payslips)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for i := range payslips {
		resp.Data = append(resp.Data, *payslipToResponse(&payslips[i]))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) ApprovePayslip(ctx context.Context, id string) (*payroll.PayslipResponse, error) {
	return s.transitionPayslip(ctx, id, payroll.PayslipStatusApproved)
}

func (s *PayrollServiceImpl) MarkPayslipPaid(ctx context.Context, id string) (*payroll.PayslipResponse, error) {
	return s.transitionPayslip(ctx, id, payroll.PayslipStatusPaid)
}

func (s *PayrollServiceImpl) VoidPayslip(ctx context.Context, id string) (*payroll.PayslipResponse, error) {
	return s.transitionPayslip(ctx, id, payroll.PayslipStatusVoid)
}

func (s *PayrollServiceImpl) transitionPayslip(ctx context.Context, id string, next payroll.PayslipStatus) (*payroll.PayslipResponse, error) {
	payslip, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payslip.Status.CanTransitionTo(next) {
		return nil, &payroll.TransitionError{
			Entity: "payslip",
			From:   string(payslip.Status),
			To:     string(next),
		}
	}

	if err := s.payrollRepo.UpdatePayslipStatus(ctx, id, next, time.Now()); err != nil {
		return nil, err
	}
	updated, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return payslipToResponse(updated), nil
}

// ========== MAPPERS ==========

func periodToResponse(p *payroll.PayrollPeriod) *payroll.PeriodResponse {
	return &payroll.PeriodResponse{
		ID:             p.ID,
		Name:           p.Name,
		StartDate:      p.StartDate.Format("2006-01-02"),
		EndDate:        p.EndDate.Format("2006-01-02"),
		PayDate:        p.PayDate.Format("2006-01-02"),
		Status:         string(p.Status),
		TotalGross:     p.TotalGross,
		TotalDeduction: p.TotalDeduction,
		TotalNet:       p.TotalNet,
		PayslipCount:   p.PayslipCount,
	}
}

func inputToResponse(in *payroll.PeriodInput) *payroll.InputResponse {
	resp := &payroll.InputResponse{
		ID:                in.ID,
		PeriodID:          in.PeriodID,
		EmployeeID:        in.EmployeeID,
		DaysPresent:       in.DaysPresent,
		DaysPayable:       in.DaysPayable,
		OvertimeHours:     in.OvertimeHours,
		UnpaidLeaveDays:   in.UnpaidLeaveDays,
		EncashedLeaveDays: in.EncashedLeaveDays,
	}
	for _, line := range in.AdhocLines {
		resp.AdhocLines = append(resp.AdhocLines, payroll.AdhocLineRequest{
			Name:    line.Name,
			Kind:    line.Kind,
			Amount:  line.Amount,
			Taxable: line.Taxable,
		})
	}
	return resp
}

func payslipToResponse(p *payroll.Payslip) *payroll.PayslipResponse {
	resp := &payroll.PayslipResponse{
		ID:              p.ID,
		PayslipNumber:   p.PayslipNumber,
		PeriodID:        p.PeriodID,
		PeriodName:      p.PeriodName,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		Currency:        p.Currency,
		ProrationFactor: p.ProrationFactor,
		GrossEarnings:   p.GrossEarnings,
		TaxableIncome:   p.TaxableIncome,
		TaxAmount:       p.TaxAmount,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,
		Status:          string(p.Status),
		Lines:           make([]payroll.PayslipLineResponse, 0, len(p.Lines)),
	}
	if !p.GeneratedAt.IsZero() {
		resp.GeneratedAt = p.GeneratedAt.Format(time.RFC3339)
	}
	for _, line := range p.Lines {
		resp.Lines = append(resp.Lines, payroll.PayslipLineResponse{
			Name:    line.Name,
			Kind:    line.Kind,
			Source:  string(line.Source),
			Amount:  line.Amount,
			Taxable: line.Taxable,
		})
	}
	return resp
}
