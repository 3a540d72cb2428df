package utils

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CurrencySymbol is appended to every formatted VND amount.
const CurrencySymbol = "₫"

// RoundHalfUp rounds to the nearest integer, ties toward +Inf.
func RoundHalfUp(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

// FormatPrice renders an amount as whole dong with "." thousand separators,
// e.g. 1234567 -> "1.234.567₫". NaN and Inf render as "0₫".
func FormatPrice(amount float64) string {
	return FormatPriceForInput(amount) + CurrencySymbol
}

// FormatPriceForInput is FormatPrice without the currency symbol, for form
// fields.
func FormatPriceForInput(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0"
	}
	return groupThousands(strconv.FormatFloat(RoundHalfUp(amount), 'f', 0, 64))
}

// FormatPriceWithDecimals keeps the given number of decimal places, separated
// from the grouped integer part by a comma.
func FormatPriceWithDecimals(amount float64, decimals int) string {
	if decimals <= 0 {
		return FormatPrice(amount)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0" + CurrencySymbol
	}
	fixed := strconv.FormatFloat(amount, 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return groupThousands(intPart) + "," + fracPart + CurrencySymbol
}

// ParsePrice reverses FormatPrice. Currency symbols and whitespace are
// ignored, "." is a thousands separator and "," the decimal separator; text
// after a second "," is dropped. Like a browser's parseFloat, the longest
// leading decimal number is used, so "12abc" is 12 and "0x10" is 0.
// Anything without a leading number yields 0.
func ParsePrice(formatted string) float64 {
	clean := strings.Map(func(r rune) rune {
		if r == '₫' || r == 'đ' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, formatted)

	parts := strings.SplitN(clean, ",", 3)
	numeric := strings.ReplaceAll(parts[0], ".", "")
	if len(parts) > 1 {
		numeric += "." + parts[1]
	}

	v, err := strconv.ParseFloat(leadingNumber(numeric), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// leadingNumber returns the longest prefix of s shaped like
// [+-]digits[.digits][e[+-]digits], or "" when s does not start with one.
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	return s[:end]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// groupThousands inserts "." every three digits of an integer string.
func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
