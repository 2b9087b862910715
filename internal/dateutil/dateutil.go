// Package dateutil handles the MM/DD/YYYY dates that bound incremental
// transfer windows.
package dateutil

import (
	"fmt"
	"time"

	"github.com/openmailtools/zmigrate/internal/account"
)

// DefaultDaysBack is how far back the automatic incremental date reaches.
const DefaultDaysBack = 5

// Valid reports whether s is a well-formed MM/DD/YYYY date.
func Valid(s string) bool {
	_, err := time.Parse(account.DateLayout, s)
	return err == nil
}

// AutoIncrDate returns the automatic incremental date: now minus daysBack
// calendar days, in MM/DD/YYYY format.
func AutoIncrDate(now time.Time, daysBack int) string {
	return now.AddDate(0, 0, -daysBack).Format(account.DateLayout)
}

// ShouldRunIncremental reports whether an incremental window starting at
// incDate is worth transferring: the date must fall on or before yesterday,
// otherwise the window is empty by definition.
func ShouldRunIncremental(now time.Time, incDate string) (bool, error) {
	d, err := time.Parse(account.DateLayout, incDate)
	if err != nil {
		return false, fmt.Errorf("parsing incremental date %q: %w", incDate, err)
	}
	y, m, day := now.AddDate(0, 0, -1).Date()
	yesterday := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return !d.After(yesterday), nil
}
