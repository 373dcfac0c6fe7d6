package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentKind enum
type ComponentKind string

const (
	ComponentKindEarning   ComponentKind = "earning"
	ComponentKindDeduction ComponentKind = "deduction"
)

// ComponentCategory enum
type ComponentCategory string

const (
	CategoryBasic              ComponentCategory = "basic"
	CategoryAllowance          ComponentCategory = "allowance"
	CategoryBonus              ComponentCategory = "bonus"
	CategoryStatutoryDeduction ComponentCategory = "statutory_deduction"
)

// CalculationMode enum
type CalculationMode string

const (
	ModeFixed      CalculationMode = "fixed"
	ModePercentage CalculationMode = "percentage"
	ModeFormula    CalculationMode = "formula"
)

// SalaryComponent - one named line of a salary structure.
// The meaning of Value depends on Mode: a monetary amount for fixed,
// a percentage of BaseComponent for percentage, unused for formula.
type SalaryComponent struct {
	ID            string
	Name          string
	Kind          ComponentKind
	Category      ComponentCategory
	Mode          CalculationMode
	Value         decimal.Decimal
	BaseComponent *string // percentage mode: "Value% of this component"
	Formula       *string // formula mode: arithmetic over component names
	Taxable       bool
	Mandatory     bool
	Proratable    bool
	DisplayOrder  int
}

// SalaryStructure - versioned template of earning/deduction components.
// Invariants (enforced at create/update): component names are unique,
// exactly one category=basic component exists and it is fixed, and all
// base/formula references resolve within the structure without cycles.
type SalaryStructure struct {
	ID            string
	Name          string
	Description   *string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Components    []SalaryComponent
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BasicComponent returns the structure's resolution root.
func (s *SalaryStructure) BasicComponent() *SalaryComponent {
	for i := range s.Components {
		if s.Components[i].Category == CategoryBasic {
			return &s.Components[i]
		}
	}
	return nil
}

// AssignmentStatus enum
type AssignmentStatus string

const (
	AssignmentStatusActive     AssignmentStatus = "active"
	AssignmentStatusSuperseded AssignmentStatus = "superseded"
)

// EmployeeSalaryAssignment binds an employee to a structure with a
// basic-salary override. Superseded on salary change, never deleted.
type EmployeeSalaryAssignment struct {
	ID                string
	EmployeeID        string
	SalaryStructureID string
	BasicSalary       decimal.Decimal
	Currency          string
	EffectiveFrom     time.Time
	EffectiveTo       *time.Time
	Status            AssignmentStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
