// Package currencyutils parses the amount and quantity cells of broker exports.
package currencyutils

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// glyphs are stripped before parsing: currency symbols, thousands
// separators and whitespace.
var glyphs = regexp.MustCompile(`[$€£¥₪,\s]`)

// StandardizeAmount removes currency glyphs, thousands separators and
// whitespace so the remainder can be handed to decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	return glyphs.ReplaceAllString(strings.TrimSpace(amountStr), "")
}

// ParseDecimal converts a cell value to a decimal. Native numeric cells pass
// through; text is standardized first. The boolean is false when the value is
// absent or not a number.
func ParseDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		return ParseDecimal(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		cleaned := StandardizeAmount(v)
		if cleaned == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// ParseNumber is ParseDecimal converted to float64, the representation used
// by the record types.
func ParseNumber(value any) (float64, bool) {
	if f, ok := value.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	d, ok := ParseDecimal(value)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
