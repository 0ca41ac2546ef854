// Package format holds the display-formatting helpers shared by the report
// builder and page templates. All helpers render the Placeholder string for
// missing values instead of erroring.
package format

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is rendered wherever a value is absent.
const Placeholder = "-"

// ISODate is the wire format for calendar dates (YYYY-MM-DD).
const ISODate = "2006-01-02"

var usPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount as whole US dollars with thousands
// separators, e.g. "$1,234,567". A nil amount renders as the placeholder.
func FormatCurrency(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	return usPrinter.Sprintf("$%d", int64(math.Round(*amount)))
}

// FormatCurrencyCents renders an amount as US dollars with cents, e.g.
// "$1,234.56". Used by the tax report where exact figures matter.
func FormatCurrencyCents(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	return usPrinter.Sprintf("$%.2f", *amount)
}

// FormatDate renders a YYYY-MM-DD date string as M/D/YY (no leading zeros on
// month or day, two-digit year). Empty or unparseable input renders as the
// placeholder. Parsing is calendar-only, so no timezone math can shift the day.
func FormatDate(dateStr string) string {
	if dateStr == "" {
		return Placeholder
	}
	t, err := time.Parse(ISODate, dateStr)
	if err != nil {
		return Placeholder
	}
	return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
}

// FormatPercent renders a fractional ratio as a whole percentage, e.g.
// FormatPercent(0.4567) -> "46%". Rounds half away from zero. A nil ratio
// renders as the placeholder.
func FormatPercent(decimal *float64) string {
	if decimal == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d%%", int64(math.Round(*decimal*100)))
}
