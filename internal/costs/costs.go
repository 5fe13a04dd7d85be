// Package costs prices incinerator actions in token minor units.
package costs

import (
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cinderlabs/cinder-client/internal/errs"
)

const (
	FuelUnitCost   uint64 = 1_000     // TRASH minor units per fuel unit
	EnergyFlatCost uint64 = 2_000_000 // CINDER minor units per energy refill
	RepairUnitCost uint64 = 1_000_000 // CINDER minor units per durability point
)

var (
	ErrInvalidQuantity     = errs.New(errs.KindValidation, "invalid_quantity", "quantity must be a non-negative whole number")
	ErrInvalidAmount       = errs.New(errs.KindValidation, "invalid_token_amount", "invalid token amount")
	ErrInsufficientBalance = errs.New(errs.KindValidation, "insufficient_balance", "insufficient balance")
)

// FuelCost prices amount fuel units. Amounts whose price does not fit in
// uint64 minor units are rejected with ErrInvalidQuantity.
func FuelCost(amount uint64) (uint64, error) { return price(amount, FuelUnitCost) }

func EnergyCost() uint64 { return EnergyFlatCost }

// RepairCost prices points of durability; see FuelCost for overflow.
func RepairCost(points uint64) (uint64, error) { return price(points, RepairUnitCost) }

func price(qty, unit uint64) (uint64, error) {
	hi, lo := bits.Mul64(qty, unit)
	if hi != 0 {
		return 0, errs.Wrapf(ErrInvalidQuantity, "%d units overflow the price", qty)
	}
	return lo, nil
}

func HasSufficientBalance(balance, required uint64) bool { return balance >= required }

// Require returns ErrInsufficientBalance when balance does not cover required.
func Require(symbol string, balance, required uint64, precision int32) error {
	if HasSufficientBalance(balance, required) {
		return nil
	}
	return errs.Wrapf(ErrInsufficientBalance, "need %s, have %s",
		Quantity(required, precision, symbol), Quantity(balance, precision, symbol))
}

// ParseQuantity parses user input for fuel units or repair points.
func ParseQuantity(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() || !d.IsInteger() {
		return 0, errs.Wrapf(ErrInvalidQuantity, "%q", raw)
	}
	if !d.BigInt().IsUint64() {
		return 0, errs.Wrapf(ErrInvalidQuantity, "%q out of range", raw)
	}
	return d.BigInt().Uint64(), nil
}

// ToMinor converts a display amount into minor units. Amounts with more
// fractional digits than precision are rejected rather than rounded.
func ToMinor(amount decimal.Decimal, precision int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, errs.Wrapf(ErrInvalidAmount, "negative amount %s", amount)
	}
	scaled := amount.Shift(precision)
	if !scaled.IsInteger() {
		return 0, errs.Wrapf(ErrInvalidAmount, "%s has more than %d decimals", amount, precision)
	}
	if !scaled.BigInt().IsUint64() {
		return 0, errs.Wrapf(ErrInvalidAmount, "%s out of range", amount)
	}
	return scaled.BigInt().Uint64(), nil
}

// FormatMinor renders minor units as a fixed-point string.
func FormatMinor(minor uint64, precision int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(minor), -precision).StringFixed(precision)
}

// Quantity renders a chain quantity such as "10.000 TRASH".
func Quantity(minor uint64, precision int32, symbol string) string {
	return fmt.Sprintf("%s %s", FormatMinor(minor, precision), symbol)
}
