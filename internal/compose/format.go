package compose

import (
	"strconv"
	"strings"
	"time"
)

// The shop operates in one locale. All formatting is fixed de-DE:
// decimal comma, dot as thousands separator, dd.mm.yyyy dates.

// FormatEUR renders a two-decimal euro amount, e.g. "1.234,56 €".
func FormatEUR(amount float64) string {
	neg := amount < 0
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + fracPart + " €"
	if neg {
		return "-" + out
	}
	return out
}

// FormatQuantity renders a quantity with decimal comma and without
// trailing zeros: 4 -> "4", 1.5 -> "1,5", 0.1 -> "0,1".
func FormatQuantity(q float64) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	return strings.Replace(s, ".", ",", 1)
}

// FormatDate renders "02.01.2006".
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatKM renders an odometer reading with thousands grouping,
// e.g. "45.000 km".
func FormatKM(km int) string {
	return groupThousands(strconv.Itoa(km)) + " km"
}

// FormatPercent renders a tax or discount rate without trailing zeros:
// 19 -> "19", 7.5 -> "7,5".
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	return strings.Replace(s, ".", ",", 1)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
