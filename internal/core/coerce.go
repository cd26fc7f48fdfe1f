package core

// coerce.go provides locale-tolerant value coercion for raw table cells.
//
// The source data mixes Brazilian Portuguese number formatting (comma as
// decimal separator, sometimes thousands dots) with plain machine output,
// and date columns carry anything from ISO timestamps to dd/mm/yyyy text.
// Coercion is deliberately forgiving: unexpected characters are stripped,
// not rejected, and anything unparseable becomes nil so validation can
// decide whether that matters.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. ISO first since it is unambiguous, then
// day-first forms (the source data is Brazilian), then month-first as a
// last resort.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"01/02/2006",
	"20060102",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// isoDate is the normalized output format for all coerced dates.
const isoDate = "2006-01-02"

// CoerceNumber converts an arbitrary cell value to a float.
//
// nil stays nil; already-numeric values pass through unchanged. Anything
// else is stringified, the first comma is treated as the decimal separator,
// every character that is not a digit, period, or minus sign is stripped,
// and the remainder is parsed. Unparseable input yields nil.
func CoerceNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case uint64:
		f := float64(n)
		return &f
	case bool:
		// Booleans are not numbers; a status flag in a numeric column is
		// bad data, not a 0/1.
		return nil
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return nil
	}

	s = strings.Replace(s, ",", ".", 1)

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	return parseLoose(b.String())
}

// parseLoose parses the longest valid numeric prefix of s, mirroring the
// permissive parsing the source data was historically cleaned with:
// "1.234.56" yields 1.234 instead of an error. Do not tighten this;
// downstream consumers depend on the current bias.
func parseLoose(s string) *float64 {
	end := 0
	seenDot := false
	seenDigit := false

	for i, r := range s {
		if r == '-' && i == 0 {
			end = i + 1
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			end = i + 1
			continue
		}
		if r >= '0' && r <= '9' {
			seenDigit = true
			end = i + 1
			continue
		}
		break
	}

	if !seenDigit {
		return nil
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

// CoerceDate converts an arbitrary cell value to an ISO calendar date
// (YYYY-MM-DD), discarding any time-of-day. Returns nil when the value
// cannot be read as a date.
func CoerceDate(v any) *string {
	switch d := v.(type) {
	case nil:
		return nil
	case time.Time:
		s := d.Format(isoDate)
		return &s
	case *time.Time:
		if d == nil {
			return nil
		}
		s := d.Format(isoDate)
		return &s
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			iso := t.Format(isoDate)
			return &iso
		}
	}

	return nil
}

// CoerceString converts a cell value to a trimmed string, with nil and
// whitespace-only input collapsing to "".
func CoerceString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// stringify renders a raw cell value as text. []byte shows up when the
// sqlite driver returns BLOB-typed cells.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// numberOrDefault coerces v, substituting def when coercion fails.
func numberOrDefault(v any, def float64) float64 {
	if f := CoerceNumber(v); f != nil {
		return *f
	}
	return def
}
