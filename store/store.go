package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// userSettingsCache caches per-user scheduling preferences.
	userSettingsCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		userSettingsCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userSettingsCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateCalendarEvent(ctx context.Context, create *CalendarEvent) (*CalendarEvent, error) {
	return s.driver.CreateCalendarEvent(ctx, create)
}

func (s *Store) ListCalendarEvents(ctx context.Context, find *FindCalendarEvent) ([]*CalendarEvent, error) {
	return s.driver.ListCalendarEvents(ctx, find)
}

func (s *Store) GetCalendarEvent(ctx context.Context, find *FindCalendarEvent) (*CalendarEvent, error) {
	return s.driver.GetCalendarEvent(ctx, find)
}

func (s *Store) UpdateCalendarEvent(ctx context.Context, update *UpdateCalendarEvent) error {
	return s.driver.UpdateCalendarEvent(ctx, update)
}

func (s *Store) UpsertUserSettings(ctx context.Context, upsert *UpsertUserSettings) (*UserSettings, error) {
	settings, err := s.driver.UpsertUserSettings(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userSettingsCache.Delete(userSettingsCacheKey(upsert.UserID))
	return settings, nil
}

// GetUserSettings returns the stored settings for a user, or nil when the
// user has none. Results are cached; callers must not mutate them.
func (s *Store) GetUserSettings(ctx context.Context, find *FindUserSettings) (*UserSettings, error) {
	key := userSettingsCacheKey(find.UserID)
	if v, ok := s.userSettingsCache.Get(key); ok {
		return v.(*UserSettings), nil
	}

	settings, err := s.driver.GetUserSettings(ctx, find)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		s.userSettingsCache.Set(key, settings)
	}
	return settings, nil
}

func userSettingsCacheKey(userID int32) string {
	return fmt.Sprintf("user_settings:%d", userID)
}
