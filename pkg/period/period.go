// Package period resolves named reporting windows into concrete intervals.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
)

// Selector names a reporting window.
type Selector string

// Supported selectors.
const (
	Today   Selector = "today"
	Week    Selector = "week"
	Month   Selector = "month"
	Quarter Selector = "quarter"
	Year    Selector = "year"
	Custom  Selector = "custom"
)

// DefaultSelector applies when a caller does not pick a window.
const DefaultSelector = Month

// Tick is the gap between a range and its predecessor.
const Tick = time.Nanosecond

// Range is an inclusive [Start, End] interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Duration returns End-Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether [start, end] intersects the range. A zero end is open-ended.
func (r Range) Overlaps(start, end time.Time) bool {
	if start.After(r.End) {
		return false
	}
	if !end.IsZero() && end.Before(r.Start) {
		return false
	}
	return true
}

// Key renders the range for cache keys.
func (r Range) Key() string {
	return fmt.Sprintf("%s~%s", r.Start.UTC().Format(time.RFC3339), r.End.UTC().Format(time.RFC3339))
}

// ParseSelector normalises raw input. Empty input selects DefaultSelector.
func ParseSelector(raw string) (Selector, error) {
	sel := Selector(strings.ToLower(strings.TrimSpace(raw)))
	switch sel {
	case "":
		return DefaultSelector, nil
	case Today, Week, Month, Quarter, Year, Custom:
		return sel, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown date range %q", raw))
	}
}

// Resolver turns selectors into ranges relative to a clock.
type Resolver struct {
	now      func() time.Time
	location *time.Location
}

// NewResolver builds a resolver anchored to the wall clock in loc.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{now: time.Now, location: loc}
}

// WithClock returns a copy of the resolver using clock instead of time.Now.
func (r *Resolver) WithClock(clock func() time.Time) *Resolver {
	clone := *r
	clone.now = clock
	return &clone
}

// Now returns the current instant in the resolver's location.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.location)
}

// Location returns the calendar location used for day boundaries.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve maps sel to a concrete range. Custom selectors require explicit and
// return it unchanged.
func (r *Resolver) Resolve(sel Selector, explicit *Range) (Range, error) {
	if sel == "" {
		sel = DefaultSelector
	}
	if sel == Custom {
		if explicit == nil || explicit.Start.IsZero() || explicit.End.IsZero() {
			return Range{}, appErrors.Clone(appErrors.ErrConfiguration, "custom date range requires start_date and end_date")
		}
		if explicit.End.Before(explicit.Start) {
			return Range{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
		}
		return *explicit, nil
	}

	end := r.Now()
	var start time.Time
	switch sel {
	case Today:
		start = DayStart(end)
	case Week:
		start = end.AddDate(0, 0, -7)
	case Month:
		start = end.AddDate(0, -1, 0)
	case Quarter:
		start = end.AddDate(0, -3, 0)
	case Year:
		start = end.AddDate(-1, 0, 0)
	default:
		return Range{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown date range %q", sel))
	}
	return Range{Start: start, End: end}, nil
}

// Previous returns the interval of identical length ending one tick before r.Start.
func Previous(r Range) Range {
	end := r.Start.Add(-Tick)
	return Range{Start: end.Add(-r.Duration()), End: end}
}

// DayStart truncates t to midnight in t's location.
func DayStart(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// Days expands the n calendar days ending on anchor's day, oldest first.
func Days(anchor time.Time, n int) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	last := DayStart(anchor)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = last.AddDate(0, 0, i-(n-1))
	}
	return days
}
