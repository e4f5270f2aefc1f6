// Package stats provides lightweight local usage statistics for the
// scheduling assistant. This is a periodic snapshot, not a metrics
// pipeline; the numbers are approximate by design of the refresh
// interval.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// Stats is a point-in-time snapshot of calendar usage.
type Stats struct {
	TotalEvents     int64 `json:"total_events"`
	UpcomingWeek    int64 `json:"upcoming_week"`
	PastWeek        int64 `json:"past_week"`
	Cancelled       int64 `json:"cancelled"`
	CreatedByAgent  int64 `json:"created_by_agent"`
	CreatedByUser   int64 `json:"created_by_user"`
	BusyMinutesWeek int64 `json:"busy_minutes_week"`

	LastUpdated time.Time `json:"last_updated"`
}

// EventLister is the store surface the collector reads from.
type EventLister interface {
	ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error)
}

// Collector periodically aggregates event statistics.
type Collector struct {
	store    EventLister
	interval time.Duration

	mu    sync.RWMutex
	stats Stats
}

// NewCollector creates a collector refreshing at interval. A
// non-positive interval falls back to one hour.
func NewCollector(st EventLister, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Collector{store: st, interval: interval}
}

// Start collects once immediately, then refreshes until ctx is done.
func (c *Collector) Start(ctx context.Context) {
	c.Collect(ctx)
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Collect(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Collect recomputes the snapshot from the store.
func (c *Collector) Collect(ctx context.Context) {
	events, err := c.store.ListCalendarEvents(ctx, &store.FindCalendarEvent{})
	if err != nil {
		slog.Warn("stats collection failed", slog.Any("error", err))
		return
	}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7).Unix()
	weekAhead := now.AddDate(0, 0, 7).Unix()
	nowTs := now.Unix()

	var next Stats
	next.TotalEvents = int64(len(events))
	for _, e := range events {
		if e.Status == store.EventStatusCancelled {
			next.Cancelled++
			continue
		}
		if e.CreatedBy == store.EventCreatorAgent {
			next.CreatedByAgent++
		} else {
			next.CreatedByUser++
		}
		if e.StartTs >= nowTs && e.StartTs < weekAhead {
			next.UpcomingWeek++
		}
		if e.EndTs <= nowTs && e.EndTs > weekAgo {
			next.PastWeek++
		}
		if e.StartTs < weekAhead && e.EndTs > weekAgo {
			next.BusyMinutesWeek += (e.EndTs - e.StartTs) / 60
		}
	}
	next.LastUpdated = now

	c.mu.Lock()
	c.stats = next
	c.mu.Unlock()
}

// Snapshot returns the latest collected statistics.
func (c *Collector) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
