// Package dateutils normalizes the date cells found in broker exports to
// canonical YYYY-MM-DD text and compares canonical dates.
package dateutils

import (
	"regexp"
	"strings"
	"time"
)

// DateLayoutISO is the canonical layout of every record date.
const DateLayoutISO = "2006-01-02"

// Layouts are tried in order; the first successful parse wins. Month-first
// precedes day-first, so an ambiguous "03/04/2023" is read as March 4th.
// Go's "1" and "2" tokens accept one or two digits.
var Layouts = []string{
	"2006-1-2", // YYYY-MM-DD
	"1/2/2006", // MM/DD/YYYY
	"2/1/2006", // DD/MM/YYYY
	"2006/1/2", // YYYY/MM/DD
	"2-1-2006", // DD-MM-YYYY
	"1-2-2006", // MM-DD-YYYY
}

var isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsISODate reports whether s already has the canonical YYYY-MM-DD shape.
// Only the shape is checked.
func IsISODate(s string) bool {
	return isoPattern.MatchString(s)
}

// NormalizeDate converts a cell value to YYYY-MM-DD. Text already in
// canonical form is returned unchanged, so NormalizeDate is idempotent.
// The boolean is false when the value is absent or matches no layout.
func NormalizeDate(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return ParseDateString(v)
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.Format(DateLayoutISO), true
	case *time.Time:
		if v == nil {
			return "", false
		}
		return NormalizeDate(*v)
	default:
		return "", false
	}
}

// ParseDateString normalizes date text using Layouts.
func ParseDateString(s string) (string, bool) {
	if IsISODate(s) {
		return s, true
	}
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return "", false
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(DateLayoutISO), true
		}
	}
	return "", false
}

// IsValid reports whether s is a real calendar date in canonical form.
func IsValid(s string) bool {
	if !IsISODate(s) {
		return false
	}
	_, err := time.Parse(DateLayoutISO, s)
	return err == nil
}
