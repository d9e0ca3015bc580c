package utils

import (
	"time"
)

// TimestampLayout is the ISO-8601 layout used for timestamps written to the sheet.
const TimestampLayout = time.RFC3339

// LookbackWindow returns the [from, to] range ending at now (in UTC) and
// starting the given number of days earlier.
func LookbackWindow(now time.Time, days int) (from, to time.Time) {
	to = now.UTC()
	from = to.AddDate(0, 0, -days)
	return from, to
}

// FormatUTC formats t as an ISO-8601 UTC timestamp. The zero time formats as "".
func FormatUTC(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
