// Package normalize parses raw statement cell values (dates, amounts,
// free text) into canonical forms. The policy is lenient: bad rows are
// dropped or defaulted rather than failing an import, and the caller
// reports the rows_in vs rows_out delta.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxDescriptionLen clips runaway statement narratives.
const maxDescriptionLen = 100

var (
	isoPrefixRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	slashDateRe  = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})$`)
	ymdSlashRe   = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	thousandsRe  = regexp.MustCompile(`,(\d{3})(\D|$)`)
	amountKeepRe = regexp.MustCompile(`[^0-9.,\-]`)
)

// fallbackLayouts are tried, in order, when no structured pattern fits.
var fallbackLayouts = []string{
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 06",
}

// Date parses a raw date cell and returns the calendar date. Attempt
// order: ISO prefix, day/month numeric forms, year-first numeric forms,
// then a handful of textual layouts. Unparseable input defaults to now
// (truncated to the day); defaulted reports when that happened so the
// import summary can surface it.
func Date(raw string, now time.Time) (date time.Time, defaulted bool) {
	s := strings.TrimSpace(raw)

	if m := isoPrefixRe.FindStringSubmatch(s); m != nil {
		if d, ok := civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, false
		}
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		first, second, year := atoi(m[1]), atoi(m[2]), expandYear(atoi(m[3]))
		// A first group above 12 can only be a day, which disambiguates
		// DD/MM from MM/DD. Otherwise month-first is assumed.
		day, month := second, first
		if first > 12 {
			day, month = first, second
		} else if second > 12 {
			day, month = second, first
		}
		if d, ok := civilDate(year, month, day); ok {
			return d, false
		}
	}

	if m := ymdSlashRe.FindStringSubmatch(s); m != nil {
		if d, ok := civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, false
		}
	}

	for _, layout := range fallbackLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, false
		}
	}

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
}

// Amount parses a raw amount cell into a positive decimal. Everything
// except digits, separators and the sign is stripped, thousands commas
// removed, a remaining comma treated as the decimal point, and the
// result made absolute (statements show expenses as negatives or in
// parentheses). Returns ok=false for unparseable, zero or, after taking
// the absolute value, non-positive amounts; such rows are dropped.
func Amount(raw string) (decimal.Decimal, bool) {
	s := amountKeepRe.ReplaceAllString(strings.TrimSpace(raw), "")
	for thousandsRe.MatchString(s) {
		s = thousandsRe.ReplaceAllString(s, "$1$2")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || s == "-" || s == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	d = d.Abs()
	if !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Description strips quote characters, trims whitespace and clips to
// 100 characters. An empty result means the row should be dropped.
func Description(raw string) string {
	s := strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' || r == '`' {
			return -1
		}
		return r
	}, raw)
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxDescriptionLen {
		s = string(runes[:maxDescriptionLen])
	}
	return s
}

// CategoryKeywords maps a category ID to lower-cased keywords that
// suggest it, e.g. groceries -> {"grocery", "walmart", "supermarket"}.
type CategoryKeywords struct {
	CategoryID string
	Keywords   []string
}

// SuggestCategory returns the ID of the first dictionary entry with a
// keyword appearing in the description, or "" when nothing matches.
// This is an import-time default only; it carries no category source
// until the rule engine or a human confirms it.
func SuggestCategory(description string, dict []CategoryKeywords) string {
	desc := strings.ToLower(description)
	for _, entry := range dict {
		for _, kw := range entry.Keywords {
			if kw != "" && strings.Contains(desc, strings.ToLower(kw)) {
				return entry.CategoryID
			}
		}
	}
	return ""
}

// civilDate validates the components and returns a UTC midnight date.
func civilDate(year, month, day int) (time.Time, bool) {
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like Feb 30 -> Mar 2.
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

func expandYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
