package types

import (
	"time"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
)

// NextDeliveryDate calculates the next delivery date from the current one for a
// given cadence. The advance is always relative to the current due date, not to
// "today", so schedules stay drift-free across sweeps.
// Monthly cadence uses calendar month-add semantics with end-of-month clamping:
// Jan 31 advances to Feb 28 (29 in a leap year), not Mar 3.
func NextDeliveryDate(current time.Time, frequency Frequency) (time.Time, error) {
	switch frequency {
	case FrequencyDaily:
		return AddClampedDate(current, 0, 0, 1), nil
	case FrequencyWeekly:
		return AddClampedDate(current, 0, 0, 7), nil
	case FrequencyMonthly:
		return AddClampedDate(current, 0, 1, 0), nil
	default:
		return current, ierr.NewError("invalid frequency").
			WithHint("Frequency must be one of daily, weekly or monthly").
			WithReportableDetails(map[string]any{
				"frequency": frequency,
			}).
			Mark(ierr.ErrValidation)
	}
}

// AddClampedDate adds the given years/months/days to t, clamping the day of month
// to the last valid day of the target month instead of overflowing into the next
// month the way time.AddDate does.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	clamped := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		clamped = clamped.AddDate(0, 0, days)
	}
	return clamped
}

// DateOnly truncates t to midnight UTC. Delivery dates have no time-of-day
// semantics beyond "due at or before the date boundary of the sweep".
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
