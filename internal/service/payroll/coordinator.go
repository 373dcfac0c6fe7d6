package payroll

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
)

// Machine-readable failure classes for the bulk report, beyond the
// structural kinds carried by salary.ResolutionError.
const (
	failureKindInvalidStructure   = "invalid_structure"
	failureKindInvalidInput       = "invalid_input"
	failureKindNegativeNetPay     = "negative_net_pay"
	failureKindNoActiveAssignment = "no_active_assignment"
	failureKindEmployeeNotFound   = "employee_not_found"
	failureKindNoActiveTaxTable   = "no_active_tax_table"
	failureKindInternal           = "internal"
)

// failureKind classifies a generation error for the bulk report.
func failureKind(err error) string {
	var resolution *salary.ResolutionError
	if errors.As(err, &resolution) {
		return string(resolution.Kind)
	}
	switch {
	case errors.Is(err, salary.ErrMissingBasicComponent),
		errors.Is(err, salary.ErrDuplicateComponentName):
		return failureKindInvalidStructure
	case errors.Is(err, payroll.ErrInvalidPeriodInput):
		return failureKindInvalidInput
	case errors.Is(err, payroll.ErrNegativeNetPay):
		return failureKindNegativeNetPay
	case errors.Is(err, payroll.ErrNoActiveAssignment):
		return failureKindNoActiveAssignment
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return failureKindEmployeeNotFound
	case errors.Is(err, tax.ErrNoActiveTable):
		return failureKindNoActiveTaxTable
	}
	return failureKindInternal
}

// BulkGenerate fans payslip generation out over a bounded worker pool.
// One employee's failure never aborts the run: each failure is recorded
// with its typed error and the remaining employees proceed. Only a
// context cancellation or a failure to set up the run itself stops it.
func (s *PayrollServiceImpl) BulkGenerate(ctx context.Context, req *payroll.BulkGenerateRequest) (*payroll.BulkGenerateResponse, error) {
	gen, err := s.newGenerationContext(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		active, err := s.employeeRepo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		for _, emp := range active {
			employeeIDs = append(employeeIDs, emp.ID)
		}
	}

	resp := &payroll.BulkGenerateResponse{
		PeriodID:  req.PeriodID,
		Requested: len(employeeIDs),
	}
	if len(employeeIDs) == 0 {
		return resp, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkWorkers)

	for _, employeeID := range employeeIDs {
		g.Go(func() error {
			payslip, err := s.generateOne(gctx, gen, employeeID, req.Regenerate)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				resp.Succeeded = append(resp.Succeeded, payroll.BulkSuccess{
					EmployeeID: employeeID,
					PayslipID:  payslip.ID,
				})
				resp.TotalNet = resp.TotalNet.Add(payslip.NetPay)
			case errors.Is(err, payroll.ErrDuplicatePayslip):
				// Already generated and regeneration not requested:
				// idempotent success, not a failure.
				resp.Skipped++
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				resp.Failed++
				resp.Failures = append(resp.Failures, payroll.BulkFailure{
					EmployeeID: employeeID,
					Kind:       failureKind(err),
					Reason:     err.Error(),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(resp.Succeeded, func(i, j int) bool {
		return resp.Succeeded[i].EmployeeID < resp.Succeeded[j].EmployeeID
	})
	sort.Slice(resp.Failures, func(i, j int) bool {
		return resp.Failures[i].EmployeeID < resp.Failures[j].EmployeeID
	})
	return resp, nil
}
