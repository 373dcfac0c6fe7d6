package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Structure resolution errors carry machine-readable details.
	var resolutionErr *salary.ResolutionError
	if errors.As(err, &resolutionErr) {
		details := map[string]string{
			"kind":      string(resolutionErr.Kind),
			"component": resolutionErr.Component,
		}
		if len(resolutionErr.Cycle) > 0 {
			details["cycle"] = strings.Join(resolutionErr.Cycle, " -> ")
		}
		BadRequest(w, resolutionErr.Error(), details)
		return
	}

	switch {
	// Salary domain errors
	case errors.Is(err, salary.ErrStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, salary.ErrStructureNameExists):
		Conflict(w, "Salary structure name already exists")
	case errors.Is(err, salary.ErrStructureInUse):
		Conflict(w, "Salary structure is assigned to employees and cannot be deleted")
	case errors.Is(err, salary.ErrAssignmentNotFound):
		NotFound(w, "Salary assignment not found")
	case errors.Is(err, salary.ErrAssignmentOverlap):
		Conflict(w, "Employee already has an active assignment covering this date")
	case errors.Is(err, salary.ErrDuplicateComponentName),
		errors.Is(err, salary.ErrMissingBasicComponent),
		errors.Is(err, salary.ErrInvalidDateFilter):
		BadRequest(w, err.Error(), nil)

	// Tax domain errors
	case errors.Is(err, tax.ErrTableNotFound):
		NotFound(w, "Tax slab table not found")
	case errors.Is(err, tax.ErrTableNameExists):
		Conflict(w, "Tax slab table name already exists")
	case errors.Is(err, tax.ErrNoActiveTable):
		Conflict(w, "No tax slab table is active for this period")
	case errors.Is(err, tax.ErrInvalidConfig):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPeriodOverlap):
		Conflict(w, "Payroll period overlaps an existing period")
	case errors.Is(err, payroll.ErrInvalidPeriodRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPeriodNotEditable):
		Conflict(w, "Payroll period is no longer editable")
	case errors.Is(err, payroll.ErrPeriodNotProcessable):
		Conflict(w, "Payroll period is not in a processable status")
	case errors.Is(err, payroll.ErrPeriodTransition),
		errors.Is(err, payroll.ErrPayslipTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInputNotFound):
		NotFound(w, "Period input not found")
	case errors.Is(err, payroll.ErrInvalidPeriodInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrDuplicatePayslip):
		Conflict(w, "Payslip already exists for this employee and period")
	case errors.Is(err, payroll.ErrNoActiveAssignment):
		Conflict(w, "Employee has no active salary assignment for this period")
	case errors.Is(err, payroll.ErrNegativeNetPay):
		Conflict(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Conflict(w, "Employee is not active for this period")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
