package costs

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/errs"
)

func TestCosts(t *testing.T) {
	fuel, err := FuelCost(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), fuel)

	assert.Equal(t, uint64(2000000), EnergyCost())

	repair, err := RepairCost(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3000000), repair)

	fuel, err = FuelCost(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fuel)
}

func TestCosts_Overflow(t *testing.T) {
	amount, err := ParseQuantity("18446744073709552")
	require.NoError(t, err)

	_, err = FuelCost(amount)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	maxFuel := math.MaxUint64 / FuelUnitCost
	fuel, err := FuelCost(maxFuel)
	require.NoError(t, err)
	assert.Equal(t, maxFuel*FuelUnitCost, fuel)

	_, err = FuelCost(maxFuel + 1)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = RepairCost(math.MaxUint64/RepairUnitCost + 1)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestHasSufficientBalance(t *testing.T) {
	assert.False(t, HasSufficientBalance(5000, 10000))
	assert.True(t, HasSufficientBalance(10000, 10000))
	assert.True(t, HasSufficientBalance(10001, 10000))
}

func TestRequire(t *testing.T) {
	require.NoError(t, Require("TRASH", 10000, 10000, 3))

	err := Require("TRASH", 5000, 10000, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Contains(t, err.Error(), "need 10.000 TRASH, have 5.000 TRASH")
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    uint64
		wantErr bool
	}{
		{name: "whole", raw: "10", want: 10},
		{name: "padded", raw: " 7 ", want: 7},
		{name: "zero", raw: "0", want: 0},
		{name: "negative", raw: "-1", wantErr: true},
		{name: "fraction", raw: "1.5", wantErr: true},
		{name: "garbage", raw: "ten", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidQuantity))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMinor(t *testing.T) {
	got, err := ToMinor(decimal.RequireFromString("5.5"), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5500), got)

	_, err = ToMinor(decimal.RequireFromString("0.0001"), 3)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = ToMinor(decimal.RequireFromString("-1"), 3)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "10.000", FormatMinor(10000, 3))
	assert.Equal(t, "2.000000", FormatMinor(2000000, 6))
	assert.Equal(t, "0.001", FormatMinor(1, 3))
	assert.Equal(t, "5.500 TRASH", Quantity(5500, 3, "TRASH"))
}
