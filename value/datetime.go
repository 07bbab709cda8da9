package value

import (
	"fmt"
	"strings"
	"time"
)

// SysdateSentinel is the textual marker that, when stored as a DateTime
// default or literal, means "the database's current timestamp function"
// rather than a literal instant. Dialects substitute their own
// CURRENT_TIMESTAMP spelling for it (see dialect.SQLDialect.SQLValue).
const SysdateSentinel = "sysdate"

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime accepts both "YYYY-MM-DD HH:MM:SS" and
// "YYYY-MM-DDTHH:MM:SS" forms, optionally with ".mmm" milliseconds.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("value: cannot parse datetime %q: %w", s, lastErr)
}

// FormatDateTime renders t in the canonical "YYYY-MM-DD HH:MM:SS" form
// used by AsString and by dialects with no richer literal syntax, with
// ".mmm" milliseconds appended when t has a sub-second part.
func FormatDateTime(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.000")
	}
	return t.Format("2006-01-02 15:04:05")
}
