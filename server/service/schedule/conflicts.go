package schedule

import (
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// FindConflicts returns every event that conflicts with the candidate
// interval in the given calendar. An event conflicts when it belongs to the
// same calendar, is not cancelled, is not the excluded event, and strictly
// overlaps the candidate under the half-open rule (touching endpoints do
// not conflict).
//
// excludeUID, when non-empty, skips the event being moved so an unchanged
// event does not conflict with its own former slot. Results preserve input
// order; callers sort if needed.
//
// The candidate must satisfy End > Start. A malformed candidate is a caller
// defect that upstream validation must prevent.
func FindConflicts(calendarID int32, candidate Interval, events []*store.CalendarEvent, excludeUID string) []*store.CalendarEvent {
	conflicts := make([]*store.CalendarEvent, 0)
	for _, event := range events {
		if event.CalendarID != calendarID {
			continue
		}
		if event.Status == store.EventStatusCancelled {
			continue
		}
		if excludeUID != "" && event.UID == excludeUID {
			continue
		}
		iv := Interval{Start: time.Unix(event.StartTs, 0), End: time.Unix(event.EndTs, 0)}
		if Overlaps(iv, candidate) {
			conflicts = append(conflicts, event)
		}
	}
	return conflicts
}
