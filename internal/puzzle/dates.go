// internal/puzzle/dates.go
//
// Puzzle identity: the puzzle number of a date is the count of whole days
// since the epoch (puzzle #0). Dates are civil days in "2006-01-02" form,
// computed in UTC so the mapping never drifts with DST.

package puzzle

import (
	"time"
)

// DateLayout is the canonical date key format.
const DateLayout = "2006-01-02"

// Epoch is the date of puzzle #0.
var Epoch = time.Date(2023, time.June, 11, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// SnapToDay drops the time of day, keeping t's calendar date.
func SnapToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" key.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders the date key of t.
func FormatDate(t time.Time) string {
	return SnapToDay(t).Format(DateLayout)
}

// PuzzleNumber returns the puzzle number for the calendar date of t.
func PuzzleNumber(t time.Time) int {
	return int(SnapToDay(t).Sub(Epoch) / day)
}

// PuzzleNumberOf is PuzzleNumber for a date key.
func PuzzleNumberOf(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return PuzzleNumber(t), nil
}

// DateFor is the inverse of PuzzleNumber.
func DateFor(id int) string {
	return Epoch.AddDate(0, 0, id).Format(DateLayout)
}

// HumanDate renders a date key like "Sunday, Mar 10, 2024".
// Unparseable keys are returned unchanged.
func HumanDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Monday, Jan 2, 2006")
}

// IsPublished reports whether the puzzle for date is out as of now.
func IsPublished(date string, now time.Time) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return !t.After(SnapToDay(now))
}

// Archive lists date keys from today backwards, one per day, stopping before
// a date whose puzzle number would be zero or negative.
func Archive(today time.Time) []string {
	start := SnapToDay(today)
	var out []string
	for d := start; PuzzleNumber(d) > 0; d = d.AddDate(0, 0, -1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}
