package salary

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
)

func evalFormula(t *testing.T, input string, values map[string]decimal.Decimal) decimal.Decimal {
	t.Helper()
	ast, err := parseFormula("test", input)
	require.NoError(t, err)
	result, err := ast.eval(values)
	require.NoError(t, err)
	return result
}

func TestFormula_Literals(t *testing.T) {
	t.Parallel()

	assert.True(t, evalFormula(t, "42", nil).Equal(decimal.NewFromInt(42)))
	assert.True(t, evalFormula(t, "3.14", nil).Equal(decimal.RequireFromString("3.14")))
	assert.True(t, evalFormula(t, "1 + 2 * 3", nil).Equal(decimal.NewFromInt(7)))
	assert.True(t, evalFormula(t, "(1 + 2) * 3", nil).Equal(decimal.NewFromInt(9)))
	assert.True(t, evalFormula(t, "10 - 4 - 3", nil).Equal(decimal.NewFromInt(3)))
	assert.True(t, evalFormula(t, "-5 + 8", nil).Equal(decimal.NewFromInt(3)))
	assert.True(t, evalFormula(t, "100 / 4", nil).Equal(decimal.NewFromInt(25)))
}

func TestFormula_ComponentReferences(t *testing.T) {
	t.Parallel()

	values := map[string]decimal.Decimal{
		"basic": decimal.NewFromInt(50000),
		"hra":   decimal.NewFromInt(25000),
	}

	assert.True(t, evalFormula(t, "basic * 0.5", values).Equal(decimal.NewFromInt(25000)))
	assert.True(t, evalFormula(t, "basic + hra", values).Equal(decimal.NewFromInt(75000)))
	assert.True(t, evalFormula(t, "(basic + hra) / 2", values).Equal(decimal.NewFromInt(37500)))
}

func TestFormula_Refs(t *testing.T) {
	t.Parallel()

	ast, err := parseFormula("test", "basic * 0.12 + hra - transport")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"basic", "hra", "transport"}, ast.refs(nil))

	ast, err = parseFormula("test", "1 + 2")
	require.NoError(t, err)
	assert.Empty(t, ast.refs(nil))
}

func TestFormula_DivisionByZero(t *testing.T) {
	t.Parallel()

	ast, err := parseFormula("test", "basic / zero")
	require.NoError(t, err)
	_, err = ast.eval(map[string]decimal.Decimal{
		"basic": decimal.NewFromInt(100),
		"zero":  decimal.Zero,
	})
	assert.Error(t, err)
}

func TestFormula_ParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unbalanced parens", "(1 + 2"},
		{"trailing operator", "basic +"},
		{"leading star", "* basic"},
		{"double dot number", "1.2.3"},
		{"bad character", "basic $ 2"},
		{"dangling close paren", "1 + 2)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseFormula("broken", tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, salary.ErrInvalidFormula))

			var resErr *salary.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, salary.ResolutionInvalidFormula, resErr.Kind)
			assert.Equal(t, "broken", resErr.Component)
		})
	}
}
