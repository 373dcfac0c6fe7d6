package tax

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testTable() *tax.SlabTable {
	return &tax.SlabTable{
		ID:       "table-1",
		Name:     "Standard",
		Currency: "USD",
		Slabs: []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("10000"), Rate: dec("0")},
			{LowerBound: dec("10000"), UpperBound: decPtr("40000"), Rate: dec("10")},
			{LowerBound: dec("40000"), Rate: dec("20")},
		},
	}
}

func TestCalculate_MarginalWalk(t *testing.T) {
	t.Parallel()

	// 0 on the first 10000, 10% of the next 30000, 20% of the last 10000.
	result, err := Calculate(dec("50000"), testTable())
	require.NoError(t, err)
	assert.True(t, result.Equal(dec("5000")), "got %s", result)
}

func TestCalculate_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		income string
		want   string
	}{
		{"0", "0"},
		{"9999.99", "0"},
		{"10000", "0"},
		{"10000.01", "0"},   // 10% of 0.01 rounds to 0.00
		{"25000", "1500"},   // 10% of 15000
		{"40000", "3000"},   // full second slab
		{"40001", "3000.2"}, // 3000 + 20% of 1
		{"100000", "15000"}, // 3000 + 20% of 60000
	}
	for _, tc := range cases {
		result, err := Calculate(dec(tc.income), testTable())
		require.NoError(t, err)
		assert.True(t, result.Equal(dec(tc.want)), "income %s: want %s, got %s", tc.income, tc.want, result)
	}
}

func TestCalculate_NegativeIncome(t *testing.T) {
	t.Parallel()

	_, err := Calculate(dec("-1"), testTable())
	assert.ErrorIs(t, err, ErrNegativeTaxableIncome)
}

func TestSlabTable_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		slabs []tax.Slab
	}{
		{"empty", nil},
		{"nonzero start", []tax.Slab{
			{LowerBound: dec("100"), Rate: dec("10")},
		}},
		{"gap", []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("10000"), Rate: dec("0")},
			{LowerBound: dec("20000"), Rate: dec("10")},
		}},
		{"overlap", []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("10000"), Rate: dec("0")},
			{LowerBound: dec("5000"), Rate: dec("10")},
		}},
		{"bounded final", []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("10000"), Rate: dec("0")},
			{LowerBound: dec("10000"), UpperBound: decPtr("40000"), Rate: dec("10")},
		}},
		{"inverted bounds", []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("0"), Rate: dec("0")},
			{LowerBound: dec("0"), Rate: dec("10")},
		}},
		{"negative rate", []tax.Slab{
			{LowerBound: dec("0"), UpperBound: decPtr("10000"), Rate: dec("-5")},
			{LowerBound: dec("10000"), Rate: dec("10")},
		}},
		{"mid slab unbounded", []tax.Slab{
			{LowerBound: dec("0"), Rate: dec("0")},
			{LowerBound: dec("10000"), Rate: dec("10")},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			table := &tax.SlabTable{ID: "bad", Slabs: tc.slabs}
			err := table.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tax.ErrInvalidConfig))
		})
	}
}

func TestCalculate_RejectsInvalidTable(t *testing.T) {
	t.Parallel()

	table := testTable()
	table.Slabs[1].LowerBound = dec("15000")

	_, err := Calculate(dec("50000"), table)
	assert.True(t, errors.Is(err, tax.ErrInvalidConfig))
}
