// internal/ledger/day.go
package ledger

import "time"

// DayLayout formats a betslip day identifier.
const DayLayout = "2006-01-02"

// BetslipDay returns the calendar day t falls on in loc. A nil loc means UTC.
func BetslipDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// NextDayStart returns the instant the betslip after t's day begins in loc.
func NextDayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
