package schedule

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu       sync.Mutex
	nextID   int32
	events   []*store.CalendarEvent
	settings map[int32]*store.UserSettings
}

func newMemStore() *memStore {
	return &memStore{settings: make(map[int32]*store.UserSettings)}
}

func (m *memStore) CreateCalendarEvent(_ context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	create.ID = m.nextID
	now := time.Now().Unix()
	create.CreatedTs = now
	create.UpdatedTs = now
	clone := *create
	m.events = append(m.events, &clone)
	return create, nil
}

func (m *memStore) ListCalendarEvents(_ context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*store.CalendarEvent
	for _, e := range m.events {
		if find.ID != nil && e.ID != *find.ID {
			continue
		}
		if find.UID != nil && e.UID != *find.UID {
			continue
		}
		if find.CalendarID != nil && e.CalendarID != *find.CalendarID {
			continue
		}
		if find.Status != nil && e.Status != *find.Status {
			continue
		}
		if find.ExcludeStatus != nil && e.Status == *find.ExcludeStatus {
			continue
		}
		if find.EndTs != nil && e.StartTs >= *find.EndTs {
			continue
		}
		if find.StartTs != nil && e.EndTs <= *find.StartTs {
			continue
		}
		clone := *e
		list = append(list, &clone)
	}
	return list, nil
}

func (m *memStore) GetCalendarEvent(ctx context.Context, find *store.FindCalendarEvent) (*store.CalendarEvent, error) {
	list, err := m.ListCalendarEvents(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (m *memStore) UpdateCalendarEvent(_ context.Context, update *store.UpdateCalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID != update.ID {
			continue
		}
		if update.Title != nil {
			e.Title = *update.Title
		}
		if update.StartTs != nil {
			e.StartTs = *update.StartTs
		}
		if update.EndTs != nil {
			e.EndTs = *update.EndTs
		}
		if update.Status != nil {
			e.Status = *update.Status
		}
		e.UpdatedTs = time.Now().Unix()
		return nil
	}
	return sql.ErrNoRows
}

func (m *memStore) GetUserSettings(_ context.Context, find *store.FindUserSettings) (*store.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[find.UserID], nil
}

func newTestService(t *testing.T) (Service, *memStore) {
	t.Helper()
	ms := newMemStore()
	return NewService(ms, nil), ms
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	require.NoError(t, err)
	return ts
}

func TestServiceCreateEvent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1,
		Title:      "Standup",
		Start:      at(t, "2026-01-10 10:00"),
		End:        at(t, "2026-01-10 10:30"),
		CreatedBy:  store.EventCreatorAgent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.UID)
	assert.Equal(t, store.EventStatusConfirmed, event.Status)
	assert.Equal(t, store.EventCreatorAgent, event.CreatedBy)
}

func TestServiceCreateEventConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "First",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Second",
		Start: at(t, "2026-01-10 10:30"), End: at(t, "2026-01-10 11:30"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEventConflict))

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "First", conflictErr.Conflicts[0].Title)
}

func TestServiceCreateEventBackToBack(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "First",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Second",
		Start: at(t, "2026-01-10 11:00"), End: at(t, "2026-01-10 12:00"),
	})
	assert.NoError(t, err, "touching endpoints do not conflict")
}

func TestServiceCreateEventRejectsMalformedInterval(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateEvent(context.Background(), 1, &CreateEventRequest{
		CalendarID: 1, Title: "Backwards",
		Start: at(t, "2026-01-10 11:00"), End: at(t, "2026-01-10 10:00"),
	})
	require.Error(t, err)
}

// TestServiceConcurrentCreates exercises the check-then-act window: many
// concurrent creates for the same slot must yield exactly one event.
func TestServiceConcurrentCreates(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
				CalendarID: 1, Title: "Contended",
				Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
			})
			if err != nil && !errors.Is(err, ErrEventConflict) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, e := range ms.events {
		if e.Status != store.EventStatusCancelled {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent create may win")
}

func TestServiceMoveEvent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Review",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	// Moving to an overlapping slot of its own former time must succeed:
	// the event is excluded from its own conflict check.
	moved, err := svc.MoveEvent(ctx, 1, &MoveEventRequest{
		CalendarID: 1,
		EventUID:   event.UID,
		NewStart:   at(t, "2026-01-10 10:30"),
		NewEnd:     at(t, "2026-01-10 11:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, at(t, "2026-01-10 10:30").Unix(), moved.StartTs)
}

func TestServiceMoveEventConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Blocker",
		Start: at(t, "2026-01-10 14:00"), End: at(t, "2026-01-10 15:00"),
	})
	require.NoError(t, err)

	event, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Mover",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	_, err = svc.MoveEvent(ctx, 1, &MoveEventRequest{
		CalendarID: 1,
		EventUID:   event.UID,
		NewStart:   at(t, "2026-01-10 14:30"),
		NewEnd:     at(t, "2026-01-10 15:30"),
	})
	assert.True(t, errors.Is(err, ErrEventConflict))
}

func TestServiceMoveEventByTitle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Dentist",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	moved, err := svc.MoveEvent(ctx, 1, &MoveEventRequest{
		CalendarID: 1,
		Title:      "dentist", // match is case-insensitive
		NewStart:   at(t, "2026-01-12 10:00"),
		NewEnd:     at(t, "2026-01-12 11:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, at(t, "2026-01-12 10:00").Unix(), moved.StartTs)
}

func TestServiceCancelEvent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Old",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelEvent(ctx, 1, &CancelEventRequest{CalendarID: 1, EventUID: event.UID})
	require.NoError(t, err)
	assert.Equal(t, store.EventStatusCancelled, cancelled.Status)

	// The slot is free again.
	_, err = svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "New",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	assert.NoError(t, err)
}

func TestServiceWorkingHoursDefaults(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	config, err := svc.WorkingHours(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkingHours, config)

	ms.settings[7] = &store.UserSettings{
		UserID: 7, Timezone: "Asia/Bangkok", DayStart: "08:00", DayEnd: "16:00", BufferMinutes: 15,
	}
	config, err = svc.WorkingHours(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", config.Timezone)
	assert.Equal(t, 15, config.BufferMinutes)
}

func TestServiceAvailableSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, &CreateEventRequest{
		CalendarID: 1, Title: "Meeting",
		Start: at(t, "2026-01-10 10:00"), End: at(t, "2026-01-10 11:00"),
	})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, 1, 1, at(t, "2026-01-10 00:00"))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Start.UTC().Format("15:04"))
	assert.Equal(t, "09:50", slots[0].End.UTC().Format("15:04"))
	assert.Equal(t, "11:10", slots[1].Start.UTC().Format("15:04"))
	assert.Equal(t, "18:00", slots[1].End.UTC().Format("15:04"))
}
