package formatter

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// maxExponent bounds the exponent accepted in scientific notation.
const maxExponent = 64

// Normalize converts a raw cell value to its decimal digits and left-pads it
// with '0' to width. Values already at least width long are returned as they
// are; nothing is ever truncated.
//
// Spreadsheet numeric cells may arrive as "1234.0" or "1.234E+03"; any value
// that is exactly a non-negative whole number is accepted in that form.
func Normalize(raw string, width int) (string, error) {
	digits, err := decimalDigits(raw)
	if err != nil {
		return "", err
	}
	if len(digits) >= width {
		return digits, nil
	}
	return strings.Repeat("0", width-len(digits)) + digits, nil
}

func decimalDigits(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidIdentifier)
	}
	if isDigits(s) {
		return s, nil
	}

	notWhole := fmt.Errorf("%w: %q is not a whole number", ErrInvalidIdentifier, raw)
	if !isDecimalLiteral(s) {
		return "", notWhole
	}
	// big.Rat parses the literal exactly, so large values keep every digit.
	r, ok := new(big.Rat).SetString(s)
	if !ok || r.Sign() < 0 || !r.IsInt() {
		return "", notWhole
	}
	return r.Num().String(), nil
}

// isDecimalLiteral accepts [+]digits[.digits][(e|E)[+|-]digits] with at
// least one mantissa digit and an exponent no larger than maxExponent.
func isDecimalLiteral(s string) bool {
	s = strings.TrimPrefix(s, "+")

	mantissa, exponent, hasExp := strings.Cut(strings.ToLower(s), "e")
	intPart, fracPart, _ := strings.Cut(mantissa, ".")
	if intPart == "" && fracPart == "" {
		return false
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return false
	}
	if !hasExp {
		return true
	}

	digits := strings.TrimLeft(exponent, "+-")
	if digits == "" || !isDigits(digits) || len(exponent)-len(digits) > 1 {
		return false
	}
	exp, err := strconv.Atoi(digits)
	return err == nil && exp <= maxExponent
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
