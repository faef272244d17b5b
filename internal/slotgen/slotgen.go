// Package slotgen turns working periods into bookable slot labels.
// Slots are start-times on a fixed grid ("09:00", "09:20", ...), not
// start/end ranges.
package slotgen

import (
	"fmt"
	"time"
)

const DefaultInterval = 20 * time.Minute

// Clock is a day-local wall-clock time, in minutes since midnight.
type Clock int

const EndOfDay Clock = 24 * 60

// ParseClock parses an "HH:MM" label.
func ParseClock(label string) (Clock, error) {
	var h, m int
	if _, err := fmt.Sscanf(label, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", label, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", label)
	}
	return Clock(h*60 + m), nil
}

// FromTime truncates a timestamp to its day-local clock time.
func FromTime(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Period is one contiguous working range within a day, [Start, End).
type Period struct {
	Start Clock
	End   Clock
}

type Options struct {
	// Interval is the slot width. Zero means DefaultInterval.
	Interval time.Duration
	// AllowOverflowLastSlot keeps the final slot of a period even when
	// its nominal end would run past the period's End. This matches how
	// clinics fill the tail of a shift; turning it off drops any slot
	// that does not fit entirely inside the period.
	AllowOverflowLastSlot bool
}

func DefaultOptions() Options {
	return Options{Interval: DefaultInterval, AllowOverflowLastSlot: true}
}

func (o Options) step() Clock {
	iv := o.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	return Clock(iv / time.Minute)
}

// Generate emits slot labels for each period in order, stepping from the
// period's Start by the interval. Overlapping periods are emitted as
// given; no deduplication.
func Generate(periods []Period, opts Options) []string {
	step := opts.step()

	var labels []string
	for _, p := range periods {
		for t := p.Start; t < p.End; t += step {
			if !opts.AllowOverflowLastSlot && t+step > p.End {
				break
			}
			labels = append(labels, t.String())
		}
	}
	return labels
}

// ClampToDay maps the part of [start, end] that falls on the given
// calendar day onto a day-local Period. The bool is false when the
// interval does not touch the day at all.
func ClampToDay(day, start, end time.Time) (Period, bool) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	if !start.Before(dayEnd) || !end.After(dayStart) {
		return Period{}, false
	}

	p := Period{Start: 0, End: EndOfDay}
	if start.After(dayStart) {
		p.Start = FromTime(start)
	}
	if end.Before(dayEnd) {
		p.End = FromTime(end)
	}
	return p, true
}
