package store

// EventStatus is the lifecycle status of a calendar event.
type EventStatus string

const (
	// EventStatusConfirmed marks a committed event.
	EventStatusConfirmed EventStatus = "confirmed"
	// EventStatusTentative marks an event that may still move.
	EventStatusTentative EventStatus = "tentative"
	// EventStatusCancelled marks a logically deleted event. Cancelled events
	// are excluded from conflict and availability reasoning.
	EventStatusCancelled EventStatus = "cancelled"
)

// EventCreator identifies who created an event.
type EventCreator string

const (
	// EventCreatorUser marks an event created directly by the user.
	EventCreatorUser EventCreator = "user"
	// EventCreatorAgent marks an event created by the assistant.
	EventCreatorAgent EventCreator = "agent"
)

// CalendarEvent is the object representing a calendar event.
type CalendarEvent struct {
	ID         int32
	UID        string
	CalendarID int32
	CreatorID  int32
	CreatedTs  int64
	UpdatedTs  int64

	Title       string
	Description string
	Location    string
	StartTs     int64
	EndTs       int64
	Timezone    string
	Status      EventStatus
	CreatedBy   EventCreator
}

// FindCalendarEvent is the find condition for calendar events.
type FindCalendarEvent struct {
	ID         *int32
	UID        *string
	CalendarID *int32
	CreatorID  *int32

	// Time range filters: events overlapping [StartTs, EndTs).
	StartTs *int64
	EndTs   *int64

	// Status filters
	Status        *EventStatus
	ExcludeStatus *EventStatus

	Limit  *int
	Offset *int
}

// UpdateCalendarEvent is the update request for a calendar event.
type UpdateCalendarEvent struct {
	ID          int32
	UpdatedTs   *int64
	Title       *string
	Description *string
	Location    *string
	StartTs     *int64
	EndTs       *int64
	Timezone    *string
	Status      *EventStatus
}
