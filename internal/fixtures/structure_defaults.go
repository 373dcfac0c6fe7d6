package fixtures

import (
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func strPtr(s string) *string                   { return &s }
func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// ==========================================
// DEFAULT SALARY COMPONENTS
// ==========================================

// GetDefaultComponents returns the standard component set seeded into a
// new salary structure: basic plus the common Indian-payroll allowances
// and statutory deductions.
func GetDefaultComponents() []salary.SalaryComponent {
	return []salary.SalaryComponent{
		{
			Name:         "basic",
			Kind:         salary.ComponentKindEarning,
			Category:     salary.CategoryBasic,
			Mode:         salary.ModeFixed,
			Value:        decimal.Zero, // overridden by the assignment's basic salary
			Taxable:      true,
			Mandatory:    true,
			Proratable:   true,
			DisplayOrder: 1,
		},
		{
			Name:          "hra",
			Kind:          salary.ComponentKindEarning,
			Category:      salary.CategoryAllowance,
			Mode:          salary.ModePercentage,
			Value:         decimal.NewFromInt(50),
			BaseComponent: strPtr("basic"),
			Taxable:       true,
			Mandatory:     false,
			Proratable:    true,
			DisplayOrder:  2,
		},
		{
			Name:         "transport_allowance",
			Kind:         salary.ComponentKindEarning,
			Category:     salary.CategoryAllowance,
			Mode:         salary.ModeFixed,
			Value:        decimal.NewFromInt(1600),
			Taxable:      true,
			Mandatory:    false,
			Proratable:   true,
			DisplayOrder: 3,
		},
		{
			Name:         "medical_allowance",
			Kind:         salary.ComponentKindEarning,
			Category:     salary.CategoryAllowance,
			Mode:         salary.ModeFixed,
			Value:        decimal.NewFromInt(1250),
			Taxable:      true,
			Mandatory:    false,
			Proratable:   true,
			DisplayOrder: 4,
		},
		{
			Name:          "provident_fund",
			Kind:          salary.ComponentKindDeduction,
			Category:      salary.CategoryStatutoryDeduction,
			Mode:          salary.ModePercentage,
			Value:         decimal.NewFromInt(12),
			BaseComponent: strPtr("basic"),
			Taxable:       false,
			Mandatory:     true,
			Proratable:    false,
			DisplayOrder:  5,
		},
		{
			Name:         "professional_tax",
			Kind:         salary.ComponentKindDeduction,
			Category:     salary.CategoryStatutoryDeduction,
			Mode:         salary.ModeFixed,
			Value:        decimal.NewFromInt(200),
			Taxable:      false,
			Mandatory:    true,
			Proratable:   false,
			DisplayOrder: 6,
		},
	}
}

// ==========================================
// DEFAULT TAX SLABS
// ==========================================

// GetDefaultSlabTable returns a progressive three-slab table used to
// seed a fresh installation: 0% up to 10000, 10% to 40000, 20% above.
func GetDefaultSlabTable() tax.SlabTable {
	return tax.SlabTable{
		Name:     "Default Progressive Slabs",
		Currency: "INR",
		Slabs: []tax.Slab{
			{
				LowerBound: decimal.Zero,
				UpperBound: decPtr(decimal.NewFromInt(10000)),
				Rate:       decimal.Zero,
			},
			{
				LowerBound: decimal.NewFromInt(10000),
				UpperBound: decPtr(decimal.NewFromInt(40000)),
				Rate:       decimal.NewFromInt(10),
			},
			{
				LowerBound: decimal.NewFromInt(40000),
				UpperBound: nil,
				Rate:       decimal.NewFromInt(20),
			},
		},
	}
}
