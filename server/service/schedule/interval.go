package schedule

import (
	"time"
)

// Interval is a half-open time range [Start, End).
// Valid intervals satisfy End.After(Start). Intervals are value types,
// constructed fresh per operation and never mutated in place.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the interval is non-degenerate.
func (iv Interval) IsValid() bool {
	return iv.End.After(iv.Start)
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals overlap.
// Touching endpoints (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Expand widens the interval by the given number of minutes on both sides.
func Expand(iv Interval, minutes int) Interval {
	d := time.Duration(minutes) * time.Minute
	return Interval{Start: iv.Start.Add(-d), End: iv.End.Add(d)}
}

// Clip intersects the interval with bound. The second return value is false
// when the intersection is empty.
func Clip(iv, bound Interval) (Interval, bool) {
	start := iv.Start
	if bound.Start.After(start) {
		start = bound.Start
	}
	end := iv.End
	if bound.End.Before(end) {
		end = bound.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// MergeSorted merges a start-sorted sequence of intervals into a
// non-overlapping, sorted sequence covering the same instants. An interval
// whose start is at or before the running merged end extends the current
// merged interval; otherwise it starts a new one.
func MergeSorted(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	merged := make([]Interval, 0, len(intervals))
	current := intervals[0]
	for _, iv := range intervals[1:] {
		if !iv.Start.After(current.End) {
			if iv.End.After(current.End) {
				current.End = iv.End
			}
			continue
		}
		merged = append(merged, current)
		current = iv
	}
	return append(merged, current)
}
