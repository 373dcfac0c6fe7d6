package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
)

// ===== IN-MEMORY FAKES =====

type memEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *memEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	r.employees[e.ID] = *e
	return nil
}

func (r *memEmployeeRepo) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *memEmployeeRepo) GetByCode(ctx context.Context, code string) (*employee.Employee, error) {
	for _, e := range r.employees {
		if e.EmployeeCode == code {
			return &e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (r *memEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.Status == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEmployeeRepo) ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range ids {
		if e, ok := r.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEmployeeRepo) Update(ctx context.Context, e *employee.Employee) error {
	r.employees[e.ID] = *e
	return nil
}

type memSalaryRepo struct {
	structures  map[string]salary.SalaryStructure
	assignments map[string]salary.EmployeeSalaryAssignment // by employee ID
}

func (r *memSalaryRepo) CreateStructure(ctx context.Context, s *salary.SalaryStructure) error {
	r.structures[s.ID] = *s
	return nil
}

func (r *memSalaryRepo) GetStructureByID(ctx context.Context, id string) (*salary.SalaryStructure, error) {
	s, ok := r.structures[id]
	if !ok {
		return nil, salary.ErrStructureNotFound
	}
	return &s, nil
}

func (r *memSalaryRepo) GetStructureByName(ctx context.Context, name string) (*salary.SalaryStructure, error) {
	for _, s := range r.structures {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, salary.ErrStructureNotFound
}

func (r *memSalaryRepo) ListStructures(ctx context.Context, activeOn *time.Time) ([]salary.SalaryStructure, error) {
	var out []salary.SalaryStructure
	for _, s := range r.structures {
		out = append(out, s)
	}
	return out, nil
}

func (r *memSalaryRepo) UpdateStructure(ctx context.Context, s *salary.SalaryStructure) error {
	r.structures[s.ID] = *s
	return nil
}

func (r *memSalaryRepo) ReplaceComponents(ctx context.Context, structureID string, components []salary.SalaryComponent) error {
	s := r.structures[structureID]
	s.Components = components
	r.structures[structureID] = s
	return nil
}

func (r *memSalaryRepo) CountAssignmentsByStructure(ctx context.Context, structureID string) (int, error) {
	count := 0
	for _, a := range r.assignments {
		if a.SalaryStructureID == structureID {
			count++
		}
	}
	return count, nil
}

func (r *memSalaryRepo) DeleteStructure(ctx context.Context, id string) error {
	delete(r.structures, id)
	return nil
}

func (r *memSalaryRepo) CreateAssignment(ctx context.Context, a *salary.EmployeeSalaryAssignment) error {
	r.assignments[a.EmployeeID] = *a
	return nil
}

func (r *memSalaryRepo) GetAssignmentByID(ctx context.Context, id string) (*salary.EmployeeSalaryAssignment, error) {
	for _, a := range r.assignments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, salary.ErrAssignmentNotFound
}

func (r *memSalaryRepo) GetActiveAssignment(ctx context.Context, employeeID string, asOf time.Time) (*salary.EmployeeSalaryAssignment, error) {
	a, ok := r.assignments[employeeID]
	if !ok {
		return nil, salary.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *memSalaryRepo) ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]salary.EmployeeSalaryAssignment, error) {
	if a, ok := r.assignments[employeeID]; ok {
		return []salary.EmployeeSalaryAssignment{a}, nil
	}
	return nil, nil
}

func (r *memSalaryRepo) SupersedeAssignment(ctx context.Context, id string, effectiveTo time.Time) error {
	return nil
}

type memPayrollRepo struct {
	mu       sync.Mutex
	periods  map[string]payroll.PayrollPeriod
	inputs   map[string]payroll.PeriodInput // key: periodID/employeeID
	payslips map[string]payroll.Payslip
	seq      map[int]int
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{
		periods:  make(map[string]payroll.PayrollPeriod),
		inputs:   make(map[string]payroll.PeriodInput),
		payslips: make(map[string]payroll.Payslip),
		seq:      make(map[int]int),
	}
}

func (r *memPayrollRepo) CreatePeriod(ctx context.Context, p *payroll.PayrollPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.periods[p.ID] = *p
	return nil
}

func (r *memPayrollRepo) GetPeriodByID(ctx context.Context, id string) (*payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return nil, payroll.ErrPeriodNotFound
	}
	return &p, nil
}

func (r *memPayrollRepo) FindOverlappingPeriod(ctx context.Context, start, end time.Time, excludeID *string) (*payroll.PayrollPeriod, error) {
	return nil, payroll.ErrPeriodNotFound
}

func (r *memPayrollRepo) ListPeriods(ctx context.Context, status *payroll.PeriodStatus) ([]payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollPeriod
	for _, p := range r.periods {
		if status == nil || p.Status == *status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayrollRepo) UpdatePeriodStatus(ctx context.Context, id string, status payroll.PeriodStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.periods[id]
	p.Status = status
	r.periods[id] = p
	return nil
}

func (r *memPayrollRepo) RefreshPeriodTotals(ctx context.Context, id string) error {
	return nil
}

func (r *memPayrollRepo) UpsertInput(ctx context.Context, input *payroll.PeriodInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[input.PeriodID+"/"+input.EmployeeID] = *input
	return nil
}

func (r *memPayrollRepo) GetInput(ctx context.Context, periodID, employeeID string) (*payroll.PeriodInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inputs[periodID+"/"+employeeID]
	if !ok {
		return nil, payroll.ErrInputNotFound
	}
	return &in, nil
}

func (r *memPayrollRepo) ListInputsByPeriod(ctx context.Context, periodID string) ([]payroll.PeriodInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PeriodInput
	for _, in := range r.inputs {
		if in.PeriodID == periodID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (r *memPayrollRepo) CreatePayslip(ctx context.Context, p *payroll.Payslip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payslips {
		if existing.PeriodID == p.PeriodID && existing.EmployeeID == p.EmployeeID && existing.Status != payroll.PayslipStatusVoid {
			return payroll.ErrDuplicatePayslip
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.payslips[p.ID] = *p
	return nil
}

func (r *memPayrollRepo) ReplacePayslip(ctx context.Context, voidID string, p *payroll.Payslip) error {
	r.mu.Lock()
	voided, ok := r.payslips[voidID]
	if !ok {
		r.mu.Unlock()
		return payroll.ErrPayslipNotFound
	}
	voided.Status = payroll.PayslipStatusVoid
	r.payslips[voidID] = voided
	r.mu.Unlock()
	return r.CreatePayslip(ctx, p)
}

func (r *memPayrollRepo) GetPayslipByID(ctx context.Context, id string) (*payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payslips[id]
	if !ok {
		return nil, payroll.ErrPayslipNotFound
	}
	return &p, nil
}

func (r *memPayrollRepo) GetActivePayslip(ctx context.Context, periodID, employeeID string) (*payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payslips {
		if p.PeriodID == periodID && p.EmployeeID == employeeID && p.Status != payroll.PayslipStatusVoid {
			return &p, nil
		}
	}
	return nil, payroll.ErrPayslipNotFound
}

func (r *memPayrollRepo) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, p := range r.payslips {
		if filter.PeriodID != nil && p.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *memPayrollRepo) UpdatePayslipStatus(ctx context.Context, id string, status payroll.PayslipStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payslips[id]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	p.Status = status
	r.payslips[id] = p
	return nil
}

func (r *memPayrollRepo) NextPayslipSequence(ctx context.Context, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[year]++
	return r.seq[year], nil
}

func (r *memPayrollRepo) activeCount(periodID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, p := range r.payslips {
		if p.PeriodID == periodID && p.Status != payroll.PayslipStatusVoid {
			count++
		}
	}
	return count
}

type staticTaxService struct {
	table *tax.SlabTable
}

func (s *staticTaxService) CreateSlabTable(ctx context.Context, req *tax.CreateSlabTableRequest) (*tax.SlabTableResponse, error) {
	return nil, nil
}

func (s *staticTaxService) GetSlabTable(ctx context.Context, id string) (*tax.SlabTableResponse, error) {
	return nil, nil
}

func (s *staticTaxService) ListSlabTables(ctx context.Context) ([]tax.SlabTableResponse, error) {
	return nil, nil
}

func (s *staticTaxService) ActiveTable(ctx context.Context, asOf time.Time) (*tax.SlabTable, error) {
	return s.table, nil
}

// ===== FIXTURE =====

type coordinatorFixture struct {
	service     payroll.PayrollService
	payrollRepo *memPayrollRepo
	periodID    string
	employeeIDs []string
}

// newCoordinatorFixture seeds five active employees. All share a valid
// structure except emp-3, whose structure carries a malformed formula.
func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()

	employeeRepo := &memEmployeeRepo{employees: make(map[string]employee.Employee)}
	salaryRepo := &memSalaryRepo{
		structures:  make(map[string]salary.SalaryStructure),
		assignments: make(map[string]salary.EmployeeSalaryAssignment),
	}
	payrollRepo := newMemPayrollRepo()

	good := assemblyStructure()
	good.ID = "struct-good"
	salaryRepo.structures[good.ID] = *good

	bad := assemblyStructure()
	bad.ID = "struct-bad"
	bad.Components = append(bad.Components, salary.SalaryComponent{
		Name:         "broken",
		Kind:         salary.ComponentKindEarning,
		Category:     salary.CategoryAllowance,
		Mode:         salary.ModeFormula,
		Formula:      strPtr("basic * * 2"),
		DisplayOrder: 9,
	})
	salaryRepo.structures[bad.ID] = *bad

	var employeeIDs []string
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("emp-%d", i)
		employeeIDs = append(employeeIDs, id)
		employeeRepo.employees[id] = employee.Employee{
			ID:           id,
			EmployeeCode: fmt.Sprintf("E%03d", i),
			FullName:     fmt.Sprintf("Employee %d", i),
			JoinDate:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Status:       employee.EmploymentStatusActive,
		}
		structureID := good.ID
		if i == 3 {
			structureID = bad.ID
		}
		salaryRepo.assignments[id] = salary.EmployeeSalaryAssignment{
			ID:                fmt.Sprintf("assign-%d", i),
			EmployeeID:        id,
			SalaryStructureID: structureID,
			BasicSalary:       dec("40000"),
			Currency:          "USD",
			Status:            salary.AssignmentStatusActive,
		}
	}

	period := payroll.PayrollPeriod{
		ID:        "period-1",
		Name:      "June 2025",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		PayDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusDraft,
	}
	payrollRepo.periods[period.ID] = period

	service := NewPayrollService(
		nil,
		payrollRepo,
		salaryRepo,
		employeeRepo,
		&staticTaxService{table: testSlabTable()},
		testRates(),
		3,
	)

	return &coordinatorFixture{
		service:     service,
		payrollRepo: payrollRepo,
		periodID:    period.ID,
		employeeIDs: employeeIDs,
	}
}

// ===== COORDINATOR TESTS =====

func TestBulkGenerate_IsolatesFailures(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)

	resp, err := fx.service.BulkGenerate(context.Background(), &payroll.BulkGenerateRequest{
		PeriodID:    fx.periodID,
		EmployeeIDs: fx.employeeIDs,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Requested)
	require.Len(t, resp.Succeeded, 4)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 0, resp.Skipped)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "emp-3", resp.Failures[0].EmployeeID)
	assert.Contains(t, resp.Failures[0].Reason, "formula")

	assert.Equal(t, 4, fx.payrollRepo.activeCount(fx.periodID))
}

func TestBulkGenerate_ReportCarriesPayslipIDsAndFailureKinds(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)
	ctx := context.Background()

	resp, err := fx.service.BulkGenerate(ctx, &payroll.BulkGenerateRequest{
		PeriodID:    fx.periodID,
		EmployeeIDs: fx.employeeIDs,
	})
	require.NoError(t, err)

	// Every success names the employee and the persisted payslip.
	require.Len(t, resp.Succeeded, 4)
	wantSucceeded := []string{"emp-1", "emp-2", "emp-4", "emp-5"}
	for i, success := range resp.Succeeded {
		assert.Equal(t, wantSucceeded[i], success.EmployeeID)
		require.NotEmpty(t, success.PayslipID)
		slip, err := fx.payrollRepo.GetPayslipByID(ctx, success.PayslipID)
		require.NoError(t, err)
		assert.Equal(t, success.EmployeeID, slip.EmployeeID)
	}

	// The failure names its machine-readable class, not just free text.
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, string(salary.ResolutionInvalidFormula), resp.Failures[0].Kind)

	// An unknown employee is classified too.
	resp, err = fx.service.BulkGenerate(ctx, &payroll.BulkGenerateRequest{
		PeriodID:    fx.periodID,
		EmployeeIDs: []string{"emp-9"},
		Regenerate:  true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "employee_not_found", resp.Failures[0].Kind)
}

func TestBulkGenerate_SecondRunSkipsExisting(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)
	ctx := context.Background()

	req := &payroll.BulkGenerateRequest{PeriodID: fx.periodID, EmployeeIDs: fx.employeeIDs}

	first, err := fx.service.BulkGenerate(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Succeeded, 4)

	second, err := fx.service.BulkGenerate(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, second.Succeeded)
	assert.Equal(t, 4, second.Skipped)
	assert.Equal(t, 1, second.Failed)

	// No duplicate payslips were persisted by the second run.
	assert.Equal(t, 4, fx.payrollRepo.activeCount(fx.periodID))
}

func TestBulkGenerate_RegenerateVoidsAndReplaces(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)
	ctx := context.Background()

	_, err := fx.service.BulkGenerate(ctx, &payroll.BulkGenerateRequest{
		PeriodID:    fx.periodID,
		EmployeeIDs: fx.employeeIDs,
	})
	require.NoError(t, err)

	resp, err := fx.service.BulkGenerate(ctx, &payroll.BulkGenerateRequest{
		PeriodID:    fx.periodID,
		EmployeeIDs: fx.employeeIDs,
		Regenerate:  true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Succeeded, 4)
	assert.Equal(t, 0, resp.Skipped)

	// Exactly one non-void payslip per employee survives.
	assert.Equal(t, 4, fx.payrollRepo.activeCount(fx.periodID))
}

func TestBulkGenerate_DefaultsToAllActiveEmployees(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)

	resp, err := fx.service.BulkGenerate(context.Background(), &payroll.BulkGenerateRequest{
		PeriodID: fx.periodID,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Requested)
	assert.Len(t, resp.Succeeded, 4)
}

func TestGeneratePayslip_DuplicateRejected(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)
	ctx := context.Background()

	first, err := fx.service.GeneratePayslip(ctx, &payroll.GeneratePayslipRequest{
		PeriodID:   fx.periodID,
		EmployeeID: "emp-1",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^PAY-2025-06-\d{4}$`, first.PayslipNumber)

	_, err = fx.service.GeneratePayslip(ctx, &payroll.GeneratePayslipRequest{
		PeriodID:   fx.periodID,
		EmployeeID: "emp-1",
	})
	assert.ErrorIs(t, err, payroll.ErrDuplicatePayslip)
}

func TestGeneratePayslip_NoAssignment(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)

	// emp-6 exists nowhere.
	_, err := fx.service.GeneratePayslip(context.Background(), &payroll.GeneratePayslipRequest{
		PeriodID:   fx.periodID,
		EmployeeID: "emp-6",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestGeneratePayslip_PeriodNotProcessable(t *testing.T) {
	t.Parallel()
	fx := newCoordinatorFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.payrollRepo.UpdatePeriodStatus(ctx, fx.periodID, payroll.PeriodStatusCompleted))

	_, err := fx.service.GeneratePayslip(ctx, &payroll.GeneratePayslipRequest{
		PeriodID:   fx.periodID,
		EmployeeID: "emp-1",
	})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotProcessable)
}
