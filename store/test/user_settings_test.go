package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

func TestUserSettingsAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestingStore(ctx, t)

	settings, err := s.GetUserSettings(ctx, &store.FindUserSettings{UserID: 1})
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestUserSettingsUpsertMergesPartial(t *testing.T) {
	ctx := context.Background()
	s := newTestingStore(ctx, t)

	tz := "Asia/Bangkok"
	first, err := s.UpsertUserSettings(ctx, &store.UpsertUserSettings{UserID: 1, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", first.Timezone)
	assert.Equal(t, "09:00", first.DayStart, "unset fields take the column defaults")
	assert.Equal(t, "18:00", first.DayEnd)
	assert.Equal(t, 10, first.BufferMinutes)

	dayStart := "08:00"
	buffer := 15
	second, err := s.UpsertUserSettings(ctx, &store.UpsertUserSettings{
		UserID: 1, DayStart: &dayStart, BufferMinutes: &buffer,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", second.Timezone, "earlier values survive a partial upsert")
	assert.Equal(t, "08:00", second.DayStart)
	assert.Equal(t, 15, second.BufferMinutes)

	got, err := s.GetUserSettings(ctx, &store.FindUserSettings{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.DayStart, got.DayStart)
	assert.Equal(t, second.Timezone, got.Timezone)
}

func TestUserSettingsUpsertInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	s := newTestingStore(ctx, t)

	tz := "UTC"
	_, err := s.UpsertUserSettings(ctx, &store.UpsertUserSettings{UserID: 1, Timezone: &tz})
	require.NoError(t, err)

	// Prime the cache.
	cached, err := s.GetUserSettings(ctx, &store.FindUserSettings{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "UTC", cached.Timezone)

	updated := "Europe/Berlin"
	_, err = s.UpsertUserSettings(ctx, &store.UpsertUserSettings{UserID: 1, Timezone: &updated})
	require.NoError(t, err)

	got, err := s.GetUserSettings(ctx, &store.FindUserSettings{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
}

func TestUserSettingsIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	s := newTestingStore(ctx, t)

	tz := "Asia/Tokyo"
	_, err := s.UpsertUserSettings(ctx, &store.UpsertUserSettings{UserID: 1, Timezone: &tz})
	require.NoError(t, err)

	other, err := s.GetUserSettings(ctx, &store.FindUserSettings{UserID: 2})
	require.NoError(t, err)
	assert.Nil(t, other)
}
