package market

import (
	"fmt"
	"math/big"
	"strings"
)

// BondDecimals is the ledger's native fixed-point precision for bond amounts.
const BondDecimals = 18

// FormatUnits renders a base-unit amount as a decimal string with the given
// precision, trimming trailing zeros. Amounts stay exact: no floating point is
// involved at any step.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}
	sign := ""
	abs := new(big.Int).Abs(amount)
	if amount.Sign() < 0 {
		sign = "-"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}
	digits := frac.String()
	padded := strings.Repeat("0", decimals-len(digits)) + digits
	return sign + whole.String() + "." + strings.TrimRight(padded, "0")
}

// ParseUnits parses a decimal string into base units at the given precision.
// More fractional digits than the precision allows is an error rather than a
// silent truncation.
func ParseUnits(value string, decimals int) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	neg := false
	if strings.HasPrefix(trimmed, "-") {
		neg = true
		trimmed = trimmed[1:]
	}
	wholePart := trimmed
	fracPart := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		wholePart = trimmed[:idx]
		fracPart = trimmed[idx+1:]
	}
	if wholePart == "" {
		wholePart = "0"
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", value, decimals)
	}
	digits := wholePart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	amount, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if neg {
		amount.Neg(amount)
	}
	return amount, nil
}
