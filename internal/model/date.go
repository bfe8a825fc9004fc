package model

import "time"

// DateLayout is the only accepted calendar date format. Ledger filters compare
// dates as strings, which orders correctly only for this layout.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a canonical YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
