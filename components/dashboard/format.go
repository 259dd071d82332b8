package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars with grouping and two decimals, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.00"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + usPrinter.Sprintf("%.2f", amount)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return usPrinter.Sprintf("%d", n)
}

// FormatDate renders t as an en-US short date, e.g. "Mar 5, 2024", optionally
// followed by a two-digit 12-hour time.
func FormatDate(t time.Time, includeTime bool) string {
	layout := dateLayout
	if includeTime {
		layout = dateTimeLayout
	}
	return monday.Format(t, layout, monday.LocaleEnUS)
}

// ParseAndFormatDate accepts RFC 3339 or date-only strings. Unparseable input is returned unchanged.
func ParseAndFormatDate(value string, includeTime bool) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return FormatDate(t, includeTime)
		}
	}
	return value
}

// FormatPercentage renders a value with one decimal and a percent sign.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// formatDiscount renders a promotion badge label, e.g. "Spring Sale: 15% OFF".
func formatDiscount(p Promotion) string {
	return p.Name + ": " + strconv.FormatFloat(p.DiscountPercentage, 'f', -1, 64) + "% OFF"
}
