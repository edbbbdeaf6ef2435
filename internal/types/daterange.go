package types

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used throughout the pipeline.
const DateLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses two YYYY-MM-DD strings into a DateRange.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s before start date %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// StartString returns the range start as YYYY-MM-DD.
func (r DateRange) StartString() string { return r.Start.Format(DateLayout) }

// EndString returns the range end as YYYY-MM-DD.
func (r DateRange) EndString() string { return r.End.Format(DateLayout) }

// Contains reports whether a canonical YYYY-MM-DD date string falls inside
// the range. Empty or malformed dates are outside.
func (r DateRange) Contains(date string) bool {
	if len(date) < 10 {
		return false
	}
	d, err := time.Parse(DateLayout, date[:10])
	if err != nil {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}
