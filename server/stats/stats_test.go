package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

type fixedLister struct {
	events []*store.CalendarEvent
}

func (f *fixedLister) ListCalendarEvents(_ context.Context, _ *store.FindCalendarEvent) ([]*store.CalendarEvent, error) {
	return f.events, nil
}

func TestCollect(t *testing.T) {
	now := time.Now()
	lister := &fixedLister{events: []*store.CalendarEvent{
		{
			// tomorrow, one hour, agent created
			StartTs: now.AddDate(0, 0, 1).Unix(),
			EndTs:   now.AddDate(0, 0, 1).Add(time.Hour).Unix(),
			Status:  store.EventStatusConfirmed, CreatedBy: store.EventCreatorAgent,
		},
		{
			// two days ago, 30 minutes, user created
			StartTs: now.AddDate(0, 0, -2).Unix(),
			EndTs:   now.AddDate(0, 0, -2).Add(30 * time.Minute).Unix(),
			Status:  store.EventStatusConfirmed, CreatedBy: store.EventCreatorUser,
		},
		{
			// cancelled events count only in the cancelled bucket
			StartTs: now.AddDate(0, 0, 2).Unix(),
			EndTs:   now.AddDate(0, 0, 2).Add(time.Hour).Unix(),
			Status:  store.EventStatusCancelled, CreatedBy: store.EventCreatorUser,
		},
	}}

	c := NewCollector(lister, time.Hour)
	c.Collect(context.Background())
	s := c.Snapshot()

	assert.Equal(t, int64(3), s.TotalEvents)
	assert.Equal(t, int64(1), s.UpcomingWeek)
	assert.Equal(t, int64(1), s.PastWeek)
	assert.Equal(t, int64(1), s.Cancelled)
	assert.Equal(t, int64(1), s.CreatedByAgent)
	assert.Equal(t, int64(1), s.CreatedByUser)
	assert.Equal(t, int64(90), s.BusyMinutesWeek)
	assert.False(t, s.LastUpdated.IsZero())
}

func TestSnapshotBeforeCollect(t *testing.T) {
	c := NewCollector(&fixedLister{}, 0)
	s := c.Snapshot()
	assert.Zero(t, s.TotalEvents)
	assert.True(t, s.LastUpdated.IsZero())
}
