// Package cli implements the fintrack command line: cobra commands plus the
// formatting and rendering helpers for terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// FormatNumber adds comma separators to the integer digits of s.
// e.g., "1234567" -> "1,234,567"
func FormatNumber(s string) string {
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMoney renders an amount with two decimals, grouped thousands and an
// optional currency suffix: 1234.5 -> "1,234.50 EUR".
func FormatMoney(d decimal.Decimal, currency string) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := core.FormatAmount(d)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := sign + FormatNumber(intPart) + "." + frac
	if currency != "" {
		out += " " + currency
	}
	return out
}

// FormatSigned is FormatMoney with an explicit "+" for positive amounts.
func FormatSigned(d decimal.Decimal, currency string) string {
	if d.IsPositive() {
		return "+" + FormatMoney(d, currency)
	}
	return FormatMoney(d, currency)
}

// FormatPercent renders a utilization percentage; nil means no budget.
func FormatPercent(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.StringFixed(1) + "%"
}

// ShortID shortens an id for tables. Any unique prefix is accepted back.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatDateRange describes a filter's date window.
func FormatDateRange(from, to core.Date) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "all time"
	case from.IsZero():
		return fmt.Sprintf("until %s", to)
	case to.IsZero():
		return fmt.Sprintf("since %s", from)
	default:
		return fmt.Sprintf("%s to %s", from, to)
	}
}
