package schedule

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/server/timezone"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// WorkingHoursConfig bounds availability computation for one user.
// It is immutable within a single computation.
type WorkingHoursConfig struct {
	// Timezone is an IANA identifier. Unresolvable values fall back to UTC.
	Timezone string
	// DayStart and DayEnd are "HH:MM" times of day.
	DayStart string
	DayEnd   string
	// BufferMinutes is applied around each event on both sides, >= 0.
	BufferMinutes int
}

// DefaultWorkingHours are used when a user has no stored settings.
var DefaultWorkingHours = WorkingHoursConfig{
	Timezone:      "UTC",
	DayStart:      "09:00",
	DayEnd:        "18:00",
	BufferMinutes: 10,
}

// FreeSlot is a maximal gap between working-hours bounds and busy periods.
// It is a computed view, never persisted.
type FreeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FreeSlots computes the ordered free slots of a day.
//
// The returned slots are non-overlapping, sorted by start, each with
// End > Start, and together with the merged busy periods they exactly
// partition the day window. A buffer large enough to engulf the whole
// window yields an empty (non-nil error-free) result.
func FreeSlots(events []*store.CalendarEvent, config WorkingHoursConfig, targetDate time.Time) []FreeSlot {
	loc, err := timezone.ParseTimezone(config.Timezone)
	if err != nil {
		slog.Warn("unresolvable timezone, using UTC", "timezone", config.Timezone, "error", err)
	}

	window, ok := dayWindow(config, targetDate, loc)
	if !ok {
		return nil
	}

	// Pre-filter: non-cancelled events whose buffered interval can reach the
	// buffered window. Correctness rests on clipping below, not this filter.
	searchWindow := Expand(window, config.BufferMinutes)
	busy := make([]Interval, 0, len(events))
	for _, event := range events {
		if event.Status == store.EventStatusCancelled {
			continue
		}
		iv := Interval{Start: time.Unix(event.StartTs, 0).In(loc), End: time.Unix(event.EndTs, 0).In(loc)}
		if !iv.IsValid() || !Overlaps(Expand(iv, config.BufferMinutes), searchWindow) {
			continue
		}
		if clipped, ok := Clip(Expand(iv, config.BufferMinutes), window); ok {
			busy = append(busy, clipped)
		}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	merged := MergeSorted(busy)

	// Walk the window left to right, emitting the gap before each busy period.
	slots := make([]FreeSlot, 0, len(merged)+1)
	cursor := window.Start
	for _, b := range merged {
		if cursor.Before(b.Start) {
			slots = append(slots, FreeSlot{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		slots = append(slots, FreeSlot{Start: cursor, End: window.End})
	}

	return slots
}

// FreeSlotsRange computes free slots for each day in [startDate, endDate],
// keeping only slots of at least minDuration. Used by the find_free_slots
// intent, which searches a date range for gaps of a requested length.
func FreeSlotsRange(events []*store.CalendarEvent, config WorkingHoursConfig, startDate, endDate time.Time, minDuration time.Duration) []FreeSlot {
	loc, _ := timezone.ParseTimezone(config.Timezone)
	day := timezone.StartOfDay(startDate, loc)
	last := timezone.StartOfDay(endDate, loc)

	var slots []FreeSlot
	for !day.After(last) {
		for _, slot := range FreeSlots(events, config, day) {
			if slot.End.Sub(slot.Start) >= minDuration {
				slots = append(slots, slot)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return slots
}

func dayWindow(config WorkingHoursConfig, targetDate time.Time, loc *time.Location) (Interval, bool) {
	dayStart, err := timezone.ParseClock(config.DayStart)
	if err != nil {
		dayStart, _ = timezone.ParseClock(DefaultWorkingHours.DayStart)
	}
	dayEnd, err := timezone.ParseClock(config.DayEnd)
	if err != nil {
		dayEnd, _ = timezone.ParseClock(DefaultWorkingHours.DayEnd)
	}

	window := Interval{
		Start: timezone.Combine(targetDate, dayStart, loc),
		End:   timezone.Combine(targetDate, dayEnd, loc),
	}
	return window, window.IsValid()
}
