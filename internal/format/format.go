// Package format renders monetary amounts and dates for display. It carries
// no business logic; totals arrive already rounded.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency renders an amount with the symbol of the given ISO 4217 code,
// e.g. Currency(61.70, "USD"). Unknown codes fall back to "CODE 61.70".
func Currency(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", strings.ToUpper(code), amount)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.NarrowSymbol(unit.Amount(amount)))
}

// ParseCurrency recovers the numeric value from a string produced by
// Currency. Symbols and grouping separators are stripped; the decimal
// separator is assumed to be a dot (formatting is pinned to English).
func ParseCurrency(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, fmt.Errorf("format: no numeric value in %q", s)
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("format: parse %q: %w", s, err)
	}
	return v, nil
}

// Date renders a timestamp in the fixed human-readable pattern used across
// quotation documents.
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
