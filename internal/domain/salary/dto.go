package salary

import (
	"github.com/hrmstack/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== STRUCTURE DTOs ==========

type ComponentRequest struct {
	Name          string          `json:"name"`
	Kind          string          `json:"kind"`     // "earning" or "deduction"
	Category      string          `json:"category"` // basic, allowance, bonus, statutory_deduction
	Mode          string          `json:"mode"`     // fixed, percentage, formula
	Value         decimal.Decimal `json:"value"`
	BaseComponent *string         `json:"base_component,omitempty"`
	Formula       *string         `json:"formula,omitempty"`
	Taxable       bool            `json:"taxable"`
	Mandatory     bool            `json:"mandatory"`
	Proratable    *bool           `json:"proratable,omitempty"` // default: earnings true, statutory deductions false
	DisplayOrder  int             `json:"display_order"`
}

type CreateStructureRequest struct {
	Name          string             `json:"name"`
	Description   *string            `json:"description,omitempty"`
	EffectiveFrom string             `json:"effective_from"`
	EffectiveTo   *string            `json:"effective_to,omitempty"`
	Components    []ComponentRequest `json:"components"`
	// UseDefaultComponents seeds the standard component set instead of
	// an explicit component list.
	UseDefaultComponents bool `json:"use_default_components,omitempty"`
}

var (
	validKinds      = []string{string(ComponentKindEarning), string(ComponentKindDeduction)}
	validCategories = []string{string(CategoryBasic), string(CategoryAllowance), string(CategoryBonus), string(CategoryStatutoryDeduction)}
	validModes      = []string{string(ModeFixed), string(ModePercentage), string(ModeFormula)}
)

func (r *CreateStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.EffectiveTo != nil {
		if _, ok := validator.IsValidDate(*r.EffectiveTo); !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}
	if len(r.Components) == 0 && !r.UseDefaultComponents {
		errs = append(errs, validator.ValidationError{Field: "components", Message: "at least one component is required"})
	}
	if len(r.Components) > 0 && r.UseDefaultComponents {
		errs = append(errs, validator.ValidationError{Field: "components", Message: "must be empty when use_default_components is set"})
	}
	for i, c := range r.Components {
		field := "components[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(c.Name) {
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "is required"})
		}
		if !validator.IsInSlice(c.Kind, validKinds) {
			errs = append(errs, validator.ValidationError{Field: field + ".kind", Message: "must be 'earning' or 'deduction'"})
		}
		if !validator.IsInSlice(c.Category, validCategories) {
			errs = append(errs, validator.ValidationError{Field: field + ".category", Message: "must be one of basic, allowance, bonus, statutory_deduction"})
		}
		if !validator.IsInSlice(c.Mode, validModes) {
			errs = append(errs, validator.ValidationError{Field: field + ".mode", Message: "must be one of fixed, percentage, formula"})
		}
		switch CalculationMode(c.Mode) {
		case ModePercentage:
			if c.BaseComponent == nil || validator.IsEmpty(*c.BaseComponent) {
				errs = append(errs, validator.ValidationError{Field: field + ".base_component", Message: "is required for percentage mode"})
			}
			if c.Value.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + ".value", Message: "percentage must be non-negative"})
			}
		case ModeFormula:
			if c.Formula == nil || validator.IsEmpty(*c.Formula) {
				errs = append(errs, validator.ValidationError{Field: field + ".formula", Message: "is required for formula mode"})
			}
		case ModeFixed:
			if c.Value.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + ".value", Message: "amount must be non-negative"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateStructureRequest struct {
	ID          string
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	EffectiveTo *string             `json:"effective_to,omitempty"`
	Components  *[]ComponentRequest `json:"components,omitempty"`
}

type ComponentResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Kind          string          `json:"kind"`
	Category      string          `json:"category"`
	Mode          string          `json:"mode"`
	Value         decimal.Decimal `json:"value"`
	BaseComponent *string         `json:"base_component,omitempty"`
	Formula       *string         `json:"formula,omitempty"`
	Taxable       bool            `json:"taxable"`
	Mandatory     bool            `json:"mandatory"`
	Proratable    bool            `json:"proratable"`
	DisplayOrder  int             `json:"display_order"`
}

type StructureResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	EffectiveFrom string              `json:"effective_from"`
	EffectiveTo   *string             `json:"effective_to,omitempty"`
	Components    []ComponentResponse `json:"components"`
}

// ========== ASSIGNMENT DTOs ==========

type CreateAssignmentRequest struct {
	EmployeeID        string          `json:"employee_id"`
	SalaryStructureID string          `json:"salary_structure_id"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	Currency          string          `json:"currency"`
	EffectiveFrom     string          `json:"effective_from"`
	EffectiveTo       *string         `json:"effective_to,omitempty"`
}

func (r *CreateAssignmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.SalaryStructureID) {
		errs = append(errs, validator.ValidationError{Field: "salary_structure_id", Message: "is required"})
	}
	if !r.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be positive"})
	}
	if validator.IsEmpty(r.Currency) {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignmentResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	SalaryStructureID string          `json:"salary_structure_id"`
	StructureName     string          `json:"structure_name,omitempty"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	Currency          string          `json:"currency"`
	EffectiveFrom     string          `json:"effective_from"`
	EffectiveTo       *string         `json:"effective_to,omitempty"`
	Status            string          `json:"status"`
}
