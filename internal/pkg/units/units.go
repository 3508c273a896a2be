// Package units converts between atomic (base) amounts and human display amounts.
package units

import (
	"fmt"
	"strings"

	"miniwallet/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// BaseToDisplay renders an atomic integer amount with exactly exponent fractional digits.
// "1500000" with exponent 6 becomes "1.500000".
func BaseToDisplay(base string, exponent int32) (string, error) {
	d, err := parseBase(base)
	if err != nil {
		return "", err
	}
	return d.Shift(-exponent).StringFixed(exponent), nil
}

// DisplayToBase converts a display amount to its atomic integer string. Inputs with more
// fractional digits than the exponent allows are rejected rather than rounded.
func DisplayToBase(display string, exponent int32) (string, error) {
	display = strings.TrimSpace(display)
	d, err := decimal.NewFromString(display)
	if err != nil {
		return "", fmt.Errorf("%w: amount %q is not a number", apperrors.ErrInvalidInput, display)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w: amount %q is negative", apperrors.ErrInvalidInput, display)
	}
	shifted := d.Shift(exponent)
	if !shifted.Equal(shifted.Truncate(0)) {
		return "", fmt.Errorf("%w: amount %q has more than %d fractional digits",
			apperrors.ErrInvalidInput, display, exponent,
		)
	}
	return shifted.Truncate(0).String(), nil
}

// ParseBase parses an atomic amount, returning zero for the empty string.
func ParseBase(base string) (decimal.Decimal, error) {
	return parseBase(base)
}

func parseBase(base string) (decimal.Decimal, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: base amount %q is not a number", apperrors.ErrInvalidInput, base)
	}
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%w: base amount %q is not a non-negative integer",
			apperrors.ErrInvalidInput, base,
		)
	}
	return d, nil
}

// USDValue multiplies a display amount by a unit price and rounds to cents.
func USDValue(display string, price decimal.Decimal) string {
	d, err := decimal.NewFromString(strings.TrimSpace(display))
	if err != nil {
		return "0.00"
	}
	return d.Mul(price).StringFixed(2)
}
