// Package schedule provides the scheduling decision engine: half-open
// interval math, availability computation, conflict detection, and the
// event service that commits validated scheduling actions.
//
// The interval primitives and the availability/conflict functions are pure
// over their inputs and hold no cross-request state. Only the Service
// implementation touches the store, and it serializes conflict detection
// and commit per calendar.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/server/timezone"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// ErrEventConflict is returned when a scheduling action conflicts with
// existing events. Check with errors.Is; the concrete value is a
// *ConflictError carrying the conflicting events.
var ErrEventConflict = fmt.Errorf("event conflicts detected")

// ConflictError is a structured conflict error.
type ConflictError struct {
	Conflicts []*store.CalendarEvent
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("event conflicts with %d existing event(s)", len(e.Conflicts))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrEventConflict
}

// Store is the interface for store operations needed by the schedule service.
type Store interface {
	CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error)
	ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error)
	GetCalendarEvent(ctx context.Context, find *store.FindCalendarEvent) (*store.CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, update *store.UpdateCalendarEvent) error
	GetUserSettings(ctx context.Context, find *store.FindUserSettings) (*store.UserSettings, error)
}

type service struct {
	store    Store
	defaults WorkingHoursConfig

	// calendarLocks serializes detect+commit per calendar, closing the
	// check-then-act window between conflict detection and the write.
	mu            sync.Mutex
	calendarLocks map[int32]*sync.Mutex
}

// NewService creates a new schedule service.
func NewService(st Store, p *profile.Profile) Service {
	defaults := DefaultWorkingHours
	if p != nil {
		defaults = WorkingHoursConfig{
			Timezone:      p.DefaultTimezone,
			DayStart:      p.DefaultDayStart,
			DayEnd:        p.DefaultDayEnd,
			BufferMinutes: p.DefaultBufferMinutes,
		}
	}
	return &service{
		store:         st,
		defaults:      defaults,
		calendarLocks: make(map[int32]*sync.Mutex),
	}
}

func (s *service) lockCalendar(calendarID int32) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.calendarLocks[calendarID]
	if !ok {
		l = &sync.Mutex{}
		s.calendarLocks[calendarID] = l
	}
	return l
}

func (s *service) ListEvents(ctx context.Context, calendarID int32, start, end time.Time) ([]*store.CalendarEvent, error) {
	cancelled := store.EventStatusCancelled
	startTs, endTs := start.Unix(), end.Unix()
	return s.store.ListCalendarEvents(ctx, &store.FindCalendarEvent{
		CalendarID:    &calendarID,
		ExcludeStatus: &cancelled,
		StartTs:       &startTs,
		EndTs:         &endTs,
	})
}

func (s *service) CheckConflicts(ctx context.Context, calendarID int32, candidate Interval, excludeUID string) ([]*store.CalendarEvent, error) {
	if !candidate.IsValid() {
		return nil, fmt.Errorf("malformed interval: end must be after start")
	}
	events, err := s.ListEvents(ctx, calendarID, candidate.Start, candidate.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for conflict check: %w", err)
	}
	return FindConflicts(calendarID, candidate, events, excludeUID), nil
}

func (s *service) CreateEvent(ctx context.Context, userID int32, create *CreateEventRequest) (*store.CalendarEvent, error) {
	if !create.End.After(create.Start) {
		return nil, fmt.Errorf("event end must be after start")
	}
	if strings.TrimSpace(create.Title) == "" {
		return nil, fmt.Errorf("event title is required")
	}

	lock := s.lockCalendar(create.CalendarID)
	lock.Lock()
	defer lock.Unlock()

	candidate := Interval{Start: create.Start, End: create.End}
	conflicts, err := s.CheckConflicts(ctx, create.CalendarID, candidate, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	createdBy := create.CreatedBy
	if createdBy == "" {
		createdBy = store.EventCreatorUser
	}
	tz := create.Timezone
	if tz == "" {
		tz = s.defaults.Timezone
	}

	event, err := s.store.CreateCalendarEvent(ctx, &store.CalendarEvent{
		UID:         shortuuid.New(),
		CalendarID:  create.CalendarID,
		CreatorID:   userID,
		Title:       create.Title,
		Description: create.Description,
		Location:    create.Location,
		StartTs:     create.Start.Unix(),
		EndTs:       create.End.Unix(),
		Timezone:    tz,
		Status:      store.EventStatusConfirmed,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created",
		"calendar_id", event.CalendarID,
		"event_uid", event.UID,
		"start_ts", event.StartTs,
		"duration", candidate.Duration(),
		"created_by", event.CreatedBy,
	)
	return event, nil
}

func (s *service) MoveEvent(ctx context.Context, userID int32, move *MoveEventRequest) (*store.CalendarEvent, error) {
	if !move.NewEnd.After(move.NewStart) {
		return nil, fmt.Errorf("event end must be after start")
	}

	lock := s.lockCalendar(move.CalendarID)
	lock.Lock()
	defer lock.Unlock()

	event, err := s.findEvent(ctx, move.CalendarID, move.EventUID, move.Title, move.OriginalDate)
	if err != nil {
		return nil, err
	}

	candidate := Interval{Start: move.NewStart, End: move.NewEnd}
	conflicts, err := s.CheckConflicts(ctx, move.CalendarID, candidate, event.UID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	startTs, endTs := move.NewStart.Unix(), move.NewEnd.Unix()
	if err := s.store.UpdateCalendarEvent(ctx, &store.UpdateCalendarEvent{
		ID:      event.ID,
		StartTs: &startTs,
		EndTs:   &endTs,
	}); err != nil {
		return nil, fmt.Errorf("failed to move event: %w", err)
	}

	event.StartTs = startTs
	event.EndTs = endTs
	slog.Info("event moved", "calendar_id", event.CalendarID, "event_uid", event.UID, "start_ts", startTs)
	return event, nil
}

func (s *service) CancelEvent(ctx context.Context, userID int32, cancel *CancelEventRequest) (*store.CalendarEvent, error) {
	event, err := s.findEvent(ctx, cancel.CalendarID, cancel.EventUID, cancel.Title, cancel.Date)
	if err != nil {
		return nil, err
	}

	cancelled := store.EventStatusCancelled
	if err := s.store.UpdateCalendarEvent(ctx, &store.UpdateCalendarEvent{
		ID:     event.ID,
		Status: &cancelled,
	}); err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}

	event.Status = cancelled
	slog.Info("event cancelled", "calendar_id", event.CalendarID, "event_uid", event.UID)
	return event, nil
}

func (s *service) WorkingHours(ctx context.Context, userID int32) (WorkingHoursConfig, error) {
	settings, err := s.store.GetUserSettings(ctx, &store.FindUserSettings{UserID: userID})
	if err != nil {
		return WorkingHoursConfig{}, fmt.Errorf("failed to get user settings: %w", err)
	}
	if settings == nil {
		return s.defaults, nil
	}
	config := WorkingHoursConfig{
		Timezone:      settings.Timezone,
		DayStart:      settings.DayStart,
		DayEnd:        settings.DayEnd,
		BufferMinutes: settings.BufferMinutes,
	}
	if config.Timezone == "" {
		config.Timezone = s.defaults.Timezone
	}
	return config, nil
}

func (s *service) AvailableSlots(ctx context.Context, userID, calendarID int32, targetDate time.Time) ([]FreeSlot, error) {
	config, err := s.WorkingHours(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc, _ := timezone.ParseTimezone(config.Timezone)
	dayStart := timezone.StartOfDay(targetDate, loc)
	events, err := s.ListEvents(ctx, calendarID, dayStart.Add(-24*time.Hour), dayStart.Add(48*time.Hour))
	if err != nil {
		return nil, err
	}
	return FreeSlots(events, config, targetDate), nil
}

func (s *service) AvailableSlotsRange(ctx context.Context, userID, calendarID int32, startDate, endDate time.Time, minDuration time.Duration) ([]FreeSlot, error) {
	config, err := s.WorkingHours(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc, _ := timezone.ParseTimezone(config.Timezone)
	rangeStart := timezone.StartOfDay(startDate, loc).Add(-24 * time.Hour)
	rangeEnd := timezone.StartOfDay(endDate, loc).Add(48 * time.Hour)
	events, err := s.ListEvents(ctx, calendarID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	return FreeSlotsRange(events, config, startDate, endDate, minDuration), nil
}

// findEvent locates a non-cancelled event by UID, or by title (and
// optionally its date) when the UID is unknown.
func (s *service) findEvent(ctx context.Context, calendarID int32, uid, title string, date time.Time) (*store.CalendarEvent, error) {
	cancelled := store.EventStatusCancelled

	if uid != "" {
		event, err := s.store.GetCalendarEvent(ctx, &store.FindCalendarEvent{
			UID:           &uid,
			CalendarID:    &calendarID,
			ExcludeStatus: &cancelled,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find event: %w", err)
		}
		if event == nil {
			return nil, fmt.Errorf("event %q not found", uid)
		}
		return event, nil
	}

	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("event id or title is required")
	}

	find := &store.FindCalendarEvent{CalendarID: &calendarID, ExcludeStatus: &cancelled}
	if !date.IsZero() {
		startTs := timezone.StartOfDay(date, time.UTC).Unix()
		endTs := startTs + 24*60*60
		find.StartTs = &startTs
		find.EndTs = &endTs
	}
	events, err := s.store.ListCalendarEvents(ctx, find)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	var matches []*store.CalendarEvent
	for _, event := range events {
		if strings.EqualFold(strings.TrimSpace(event.Title), strings.TrimSpace(title)) {
			matches = append(matches, event)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no event titled %q found", title)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("multiple events titled %q found, need an event id", title)
	}
}
