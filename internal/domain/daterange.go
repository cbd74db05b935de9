package domain

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire.
const DateLayout = "2006-01-02"

// CheckInTime and CheckOutTime are informational only and play no part in
// overlap detection.
const (
	CheckInTime  = "15:00"
	CheckOutTime = "11:00"
)

// DateRange is a calendar-day range. Both ends are midnight UTC so that day
// arithmetic never sees DST or zone offsets.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar date, read in t's own location, and
// returns that date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrValidation, s)
	}
	return t, nil
}

// NewDateRange normalises start and end to calendar days and requires
// start < end. Zero-night ranges are rejected.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, NewValidationError(CodeInvalidDateRange,
			"end_date %s must be after start_date %s", r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return r, nil
}

// Nights is the number of calendar days between Start and End.
func (r DateRange) Nights() int {
	return int(dayNumber(r.End) - dayNumber(r.Start))
}

// Overlaps reports whether r and o share any calendar day, counting each
// range's end date as occupied. Back-to-back ranges where one ends on the day
// the other starts therefore overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

func dayNumber(t time.Time) int64 {
	return Day(t).Unix() / 86400
}
