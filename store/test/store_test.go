package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/store"
	"github.com/Kantisaranucheep/schedule-assistant/store/db"
)

// newTestingStore opens a fresh sqlite store in a temp directory and
// applies the schema.
func newTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:    "dev",
		Driver:  "sqlite",
		DSN:     filepath.Join(t.TempDir(), "test.db"),
		Version: "test",
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(ctx))
	t.Cleanup(func() {
		require.NoError(t, ts.Close())
	})
	return ts
}

func createTestingEvent(ctx context.Context, t *testing.T, ts *store.Store, uid string, calendarID int32, startTs, endTs int64, status store.EventStatus) *store.CalendarEvent {
	t.Helper()
	event, err := ts.CreateCalendarEvent(ctx, &store.CalendarEvent{
		UID:        uid,
		CalendarID: calendarID,
		CreatorID:  1,
		Title:      "Event " + uid,
		StartTs:    startTs,
		EndTs:      endTs,
		Timezone:   "UTC",
		Status:     status,
		CreatedBy:  store.EventCreatorUser,
	})
	require.NoError(t, err)
	return event
}
