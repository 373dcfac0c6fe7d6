package salary

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
)

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testStructure mirrors a common monthly setup: basic, HRA at 50% of
// basic, a formula allowance, PF at 12% of basic and a fixed
// non-proratable professional tax.
func testStructure() *salary.SalaryStructure {
	return &salary.SalaryStructure{
		ID:   "struct-1",
		Name: "Standard Monthly",
		Components: []salary.SalaryComponent{
			{
				Name:         "basic",
				Kind:         salary.ComponentKindEarning,
				Category:     salary.CategoryBasic,
				Mode:         salary.ModeFixed,
				Value:        dec("30000"),
				Taxable:      true,
				Proratable:   true,
				DisplayOrder: 1,
			},
			{
				Name:          "hra",
				Kind:          salary.ComponentKindEarning,
				Category:      salary.CategoryAllowance,
				Mode:          salary.ModePercentage,
				Value:         dec("50"),
				BaseComponent: strPtr("basic"),
				Taxable:       true,
				Proratable:    true,
				DisplayOrder:  2,
			},
			{
				Name:         "special_allowance",
				Kind:         salary.ComponentKindEarning,
				Category:     salary.CategoryAllowance,
				Mode:         salary.ModeFormula,
				Formula:      strPtr("(basic + hra) * 0.1"),
				Taxable:      true,
				Proratable:   true,
				DisplayOrder: 3,
			},
			{
				Name:          "pf",
				Kind:          salary.ComponentKindDeduction,
				Category:      salary.CategoryStatutoryDeduction,
				Mode:          salary.ModePercentage,
				Value:         dec("12"),
				BaseComponent: strPtr("basic"),
				DisplayOrder:  4,
			},
			{
				Name:         "professional_tax",
				Kind:         salary.ComponentKindDeduction,
				Category:     salary.CategoryStatutoryDeduction,
				Mode:         salary.ModeFixed,
				Value:        dec("200"),
				Proratable:   false,
				DisplayOrder: 5,
			},
		},
	}
}

func TestCompilePlan_ValidStructure(t *testing.T) {
	t.Parallel()

	plan, err := CompilePlan(testStructure())
	require.NoError(t, err)
	assert.Equal(t, "basic", plan.BasicComponentName())
}

func TestResolve_FullMonth(t *testing.T) {
	t.Parallel()

	plan, err := CompilePlan(testStructure())
	require.NoError(t, err)

	resolved, err := plan.Resolve(dec("50000"), decimal.NewFromInt(1))
	require.NoError(t, err)

	// Assignment override replaces the component's own fixed value.
	assert.True(t, resolved.Values["basic"].Equal(dec("50000")), "basic = %s", resolved.Values["basic"])
	assert.True(t, resolved.Values["hra"].Equal(dec("25000")))
	assert.True(t, resolved.Values["special_allowance"].Equal(dec("7500")))
	assert.True(t, resolved.Values["pf"].Equal(dec("6000")))
	assert.True(t, resolved.Values["professional_tax"].Equal(dec("200")))

	assert.True(t, resolved.GrossEarnings.Equal(dec("82500")))
	assert.True(t, resolved.TotalDeductions.Equal(dec("6200")))
	assert.True(t, resolved.TaxableEarnings.Equal(dec("82500")))
	assert.Equal(t, []string{"basic", "hra", "special_allowance", "pf", "professional_tax"}, resolved.Order)
}

func TestResolve_Prorated(t *testing.T) {
	t.Parallel()

	plan, err := CompilePlan(testStructure())
	require.NoError(t, err)

	// Half a month: proratable components scale, the fixed professional
	// tax does not, and percentages follow their already-scaled base.
	resolved, err := plan.Resolve(dec("50000"), dec("0.5"))
	require.NoError(t, err)

	assert.True(t, resolved.Values["basic"].Equal(dec("25000")))
	assert.True(t, resolved.Values["hra"].Equal(dec("12500")))
	assert.True(t, resolved.Values["pf"].Equal(dec("3000")))
	assert.True(t, resolved.Values["professional_tax"].Equal(dec("200")))
}

func TestResolve_RoundsHalfUpPerComponent(t *testing.T) {
	t.Parallel()

	structure := &salary.SalaryStructure{
		ID: "struct-round",
		Components: []salary.SalaryComponent{
			{Name: "basic", Kind: salary.ComponentKindEarning, Category: salary.CategoryBasic, Mode: salary.ModeFixed, Proratable: true, DisplayOrder: 1},
			{Name: "third", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFormula, Formula: strPtr("basic / 3"), DisplayOrder: 2},
			{Name: "half_cent", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModePercentage, Value: dec("0.005"), BaseComponent: strPtr("basic"), DisplayOrder: 3},
		},
	}
	plan, err := CompilePlan(structure)
	require.NoError(t, err)

	resolved, err := plan.Resolve(dec("100"), decimal.NewFromInt(1))
	require.NoError(t, err)

	// 100/3 = 33.333... rounds to 33.33; 0.005% of 100 = 0.005 rounds
	// half-up to 0.01.
	assert.True(t, resolved.Values["third"].Equal(dec("33.33")))
	assert.True(t, resolved.Values["half_cent"].Equal(dec("0.01")))
}

func TestCompilePlan_UnknownReference(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	structure.Components[1].BaseComponent = strPtr("missing")

	_, err := CompilePlan(structure)
	require.Error(t, err)
	assert.True(t, errors.Is(err, salary.ErrUnknownReference))

	var resErr *salary.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "hra", resErr.Component)
	assert.Equal(t, "missing", resErr.Reference)
}

func TestCompilePlan_CycleReportsMembers(t *testing.T) {
	t.Parallel()

	structure := &salary.SalaryStructure{
		ID: "struct-cycle",
		Components: []salary.SalaryComponent{
			{Name: "basic", Kind: salary.ComponentKindEarning, Category: salary.CategoryBasic, Mode: salary.ModeFixed, Value: dec("1000"), DisplayOrder: 1},
			{Name: "a", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFormula, Formula: strPtr("b + 1"), DisplayOrder: 2},
			{Name: "b", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFormula, Formula: strPtr("a + 1"), DisplayOrder: 3},
		},
	}

	_, err := CompilePlan(structure)
	require.Error(t, err)
	assert.True(t, errors.Is(err, salary.ErrCyclicDependency))

	var resErr *salary.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ElementsMatch(t, []string{"a", "b"}, resErr.Cycle)
}

func TestCompilePlan_SelfReference(t *testing.T) {
	t.Parallel()

	structure := &salary.SalaryStructure{
		ID: "struct-self",
		Components: []salary.SalaryComponent{
			{Name: "basic", Kind: salary.ComponentKindEarning, Category: salary.CategoryBasic, Mode: salary.ModeFixed, Value: dec("1000"), DisplayOrder: 1},
			{Name: "loop", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFormula, Formula: strPtr("loop * 2"), DisplayOrder: 2},
		},
	}

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrCyclicDependency))
}

func TestCompilePlan_MissingBasic(t *testing.T) {
	t.Parallel()

	structure := &salary.SalaryStructure{
		ID: "struct-nobasic",
		Components: []salary.SalaryComponent{
			{Name: "hra", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFixed, Value: dec("1000"), DisplayOrder: 1},
		},
	}

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrMissingBasicComponent))
}

func TestCompilePlan_SecondBasicRejected(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	structure.Components = append(structure.Components, salary.SalaryComponent{
		Name:         "basic_b",
		Kind:         salary.ComponentKindEarning,
		Category:     salary.CategoryBasic,
		Mode:         salary.ModeFixed,
		Value:        dec("5000"),
		DisplayOrder: 9,
	})

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrMissingBasicComponent))
}

func TestCompilePlan_NonFixedBasicRejected(t *testing.T) {
	t.Parallel()

	// A percentage basic would dodge the assignment's basic salary
	// override and silently pay from the referenced component instead.
	structure := &salary.SalaryStructure{
		ID: "struct-pctbasic",
		Components: []salary.SalaryComponent{
			{Name: "allowance", Kind: salary.ComponentKindEarning, Category: salary.CategoryAllowance, Mode: salary.ModeFixed, Value: dec("1000"), DisplayOrder: 1},
			{Name: "basic", Kind: salary.ComponentKindEarning, Category: salary.CategoryBasic, Mode: salary.ModePercentage, Value: dec("50"), BaseComponent: strPtr("allowance"), DisplayOrder: 2},
		},
	}

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrMissingBasicComponent))
}

func TestCompilePlan_DuplicateNames(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	structure.Components = append(structure.Components, structure.Components[1])

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrDuplicateComponentName))
}

func TestCompilePlan_MalformedFormula(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	structure.Components[2].Formula = strPtr("basic + ")

	_, err := CompilePlan(structure)
	assert.True(t, errors.Is(err, salary.ErrInvalidFormula))
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	plan, err := CompilePlan(testStructure())
	require.NoError(t, err)

	first, err := plan.Resolve(dec("41234.56"), dec("0.7321"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := plan.Resolve(dec("41234.56"), dec("0.7321"))
		require.NoError(t, err)
		assert.Equal(t, first.Order, again.Order)
		for name, v := range first.Values {
			assert.True(t, v.Equal(again.Values[name]), "component %s", name)
		}
	}
}
