package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

func (d *DB) UpsertUserSettings(ctx context.Context, upsert *store.UpsertUserSettings) (*store.UserSettings, error) {
	// Read current values so partial upserts keep existing fields.
	current, err := d.GetUserSettings(ctx, &store.FindUserSettings{UserID: upsert.UserID})
	if err != nil {
		return nil, err
	}

	settings := &store.UserSettings{
		UserID:        upsert.UserID,
		Timezone:      "UTC",
		DayStart:      "09:00",
		DayEnd:        "18:00",
		BufferMinutes: 10,
	}
	if current != nil {
		*settings = *current
	}
	if upsert.Timezone != nil {
		settings.Timezone = *upsert.Timezone
	}
	if upsert.DayStart != nil {
		settings.DayStart = *upsert.DayStart
	}
	if upsert.DayEnd != nil {
		settings.DayEnd = *upsert.DayEnd
	}
	if upsert.BufferMinutes != nil {
		settings.BufferMinutes = *upsert.BufferMinutes
	}

	stmt := `
		INSERT INTO user_settings (user_id, timezone, day_start, day_end, buffer_minutes, updated_ts)
		VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT (user_id) DO UPDATE SET
			timezone = excluded.timezone,
			day_start = excluded.day_start,
			day_end = excluded.day_end,
			buffer_minutes = excluded.buffer_minutes,
			updated_ts = excluded.updated_ts
		RETURNING updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		settings.UserID, settings.Timezone, settings.DayStart, settings.DayEnd, settings.BufferMinutes,
	).Scan(&settings.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert user settings: %w", err)
	}

	return settings, nil
}

func (d *DB) GetUserSettings(ctx context.Context, find *store.FindUserSettings) (*store.UserSettings, error) {
	var settings store.UserSettings
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, updated_ts, timezone, day_start, day_end, buffer_minutes
		FROM user_settings
		WHERE user_id = ?`, find.UserID,
	).Scan(
		&settings.UserID,
		&settings.UpdatedTs,
		&settings.Timezone,
		&settings.DayStart,
		&settings.DayEnd,
		&settings.BufferMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}
	return &settings, nil
}
