package recurring

import (
	"time"

	"github.com/jfenske/homeledger/internal/ledger"
)

// NextOccurrence computes the next due date for a recurring definition. The
// base is lastCreated when present, otherwise start; the result is always
// strictly after the base.
//
// daily: base + 1 day. weekly: the next calendar day matching the weekday
// index, never the base day itself. monthly/yearly: advance one calendar
// month/year and clamp the day-of-month to the length of the resulting month
// (Jan 31 -> Feb 29 in leap years, Feb 28 otherwise).
func NextOccurrence(freq ledger.Frequency, dayOfRecurrence int, start time.Time, lastCreated *time.Time) time.Time {
	base := start
	if lastCreated != nil {
		base = *lastCreated
	}
	switch freq {
	case ledger.FrequencyDaily:
		return base.AddDate(0, 0, 1)
	case ledger.FrequencyWeekly:
		ahead := (dayOfRecurrence - int(base.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return base.AddDate(0, 0, ahead)
	case ledger.FrequencyMonthly:
		return clampedDate(base, base.Year(), base.Month()+1, dayOfRecurrence)
	case ledger.FrequencyYearly:
		return clampedDate(base, base.Year()+1, base.Month(), dayOfRecurrence)
	}
	return time.Time{}
}

// clampedDate builds a date in (year, month) with day clamped to the month's
// length, keeping base's clock and location. The month is anchored at its
// first day so that advancing Jan 31 by one month lands in February rather
// than normalizing into March.
func clampedDate(base time.Time, year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, base.Location())
	if d := daysInMonth(first.Year(), first.Month()); day > d {
		day = d
	}
	h, m, sec := base.Clock()
	return time.Date(first.Year(), first.Month(), day, h, m, sec, base.Nanosecond(), base.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
