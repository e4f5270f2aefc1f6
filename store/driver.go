package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// CalendarEvent model related methods.
	CreateCalendarEvent(ctx context.Context, create *CalendarEvent) (*CalendarEvent, error)
	ListCalendarEvents(ctx context.Context, find *FindCalendarEvent) ([]*CalendarEvent, error)
	GetCalendarEvent(ctx context.Context, find *FindCalendarEvent) (*CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, update *UpdateCalendarEvent) error

	// UserSettings model related methods.
	UpsertUserSettings(ctx context.Context, upsert *UpsertUserSettings) (*UserSettings, error)
	GetUserSettings(ctx context.Context, find *FindUserSettings) (*UserSettings, error)
}
