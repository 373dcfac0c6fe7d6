package payroll

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmstack/payroll-engine-go/internal/domain/payroll"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProrationFactor(t *testing.T) {
	t.Parallel()

	factor, err := ProrationFactor(dec("22"), dec("11"))
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("0.5")))

	factor, err = ProrationFactor(dec("22"), dec("22"))
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("1")))

	// Working more days than the period holds clamps to a full salary.
	factor, err = ProrationFactor(dec("22"), dec("25"))
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("1")))
}

func TestProrationFactor_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, err := ProrationFactor(dec("0"), dec("10"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))

	_, err = ProrationFactor(dec("-5"), dec("10"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))

	_, err = ProrationFactor(dec("22"), dec("-1"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))
}

func TestProrationFactor_ZeroAttendanceRejected(t *testing.T) {
	t.Parallel()

	_, err := ProrationFactor(dec("22"), dec("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))

	var inputErr *payroll.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "days_present", inputErr.Field)
}

func TestOvertimePay(t *testing.T) {
	t.Parallel()

	// 104000/year at 40h/week = 50/hour; 10h at 1.5x = 750.
	pay, err := OvertimePay(dec("104000"), dec("40"), dec("10"), dec("1.5"))
	require.NoError(t, err)
	assert.True(t, pay.Equal(dec("750")), "got %s", pay)

	pay, err = OvertimePay(dec("104000"), dec("40"), dec("0"), dec("1.5"))
	require.NoError(t, err)
	assert.True(t, pay.IsZero())

	_, err = OvertimePay(dec("104000"), dec("0"), dec("10"), dec("1.5"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))

	_, err = OvertimePay(dec("104000"), dec("40"), dec("-1"), dec("1.5"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))
}

func TestLeaveEncashment(t *testing.T) {
	t.Parallel()

	// 22000/month over 22 working days = 1000/day.
	amount, err := LeaveEncashment(dec("22000"), dec("22"), dec("3"))
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("3000")))

	// Fractional daily rates round half-up to cents.
	amount, err = LeaveEncashment(dec("1000"), dec("3"), dec("1"))
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("333.33")))

	_, err = LeaveEncashment(dec("22000"), dec("0"), dec("3"))
	assert.True(t, errors.Is(err, payroll.ErrInvalidPeriodInput))
}
