package schedule

import (
	"context"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// Service defines the scheduling business logic interface. The intent
// pipeline calls it directly; it is also the surface behind the HTTP API.
type Service interface {
	// ListEvents returns non-cancelled events overlapping [start, end) in a calendar.
	ListEvents(ctx context.Context, calendarID int32, start, end time.Time) ([]*store.CalendarEvent, error)

	// CreateEvent creates an event after conflict checking. Detection and
	// commit run under a per-calendar lock, so two concurrent creates for
	// the same calendar cannot both pass the conflict check.
	CreateEvent(ctx context.Context, userID int32, create *CreateEventRequest) (*store.CalendarEvent, error)

	// MoveEvent reschedules an event, excluding the event itself from the
	// conflict check.
	MoveEvent(ctx context.Context, userID int32, move *MoveEventRequest) (*store.CalendarEvent, error)

	// CancelEvent soft-deletes an event by setting its status to cancelled.
	CancelEvent(ctx context.Context, userID int32, cancel *CancelEventRequest) (*store.CalendarEvent, error)

	// CheckConflicts returns the events conflicting with the candidate
	// interval. excludeUID, when non-empty, is skipped.
	CheckConflicts(ctx context.Context, calendarID int32, candidate Interval, excludeUID string) ([]*store.CalendarEvent, error)

	// WorkingHours resolves the user's working-hours configuration,
	// falling back to the profile defaults when the user has none stored.
	WorkingHours(ctx context.Context, userID int32) (WorkingHoursConfig, error)

	// AvailableSlots computes the free slots of one day for a calendar.
	AvailableSlots(ctx context.Context, userID, calendarID int32, targetDate time.Time) ([]FreeSlot, error)

	// AvailableSlotsRange computes free slots of at least minDuration over
	// a date range.
	AvailableSlotsRange(ctx context.Context, userID, calendarID int32, startDate, endDate time.Time, minDuration time.Duration) ([]FreeSlot, error)
}

// CreateEventRequest is the request to create an event.
type CreateEventRequest struct {
	CalendarID  int32
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Timezone    string
	CreatedBy   store.EventCreator
}

// MoveEventRequest reschedules an event identified by UID, or by title and
// original date when the UID is unknown.
type MoveEventRequest struct {
	CalendarID   int32
	EventUID     string
	Title        string
	OriginalDate time.Time
	NewStart     time.Time
	NewEnd       time.Time
}

// CancelEventRequest identifies an event to cancel by UID, or by title and
// date when the UID is unknown.
type CancelEventRequest struct {
	CalendarID int32
	EventUID   string
	Title      string
	Date       time.Time
}
