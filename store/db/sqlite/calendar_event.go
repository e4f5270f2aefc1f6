package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Kantisaranucheep/schedule-assistant/store"
)

func (d *DB) CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error) {
	fields := []string{
		"uid", "calendar_id", "creator_id", "title", "description", "location",
		"start_ts", "end_ts", "timezone", "status", "created_by",
	}
	args := []any{
		create.UID, create.CalendarID, create.CreatorID, create.Title, create.Description, create.Location,
		create.StartTs, create.EndTs, create.Timezone, create.Status, create.CreatedBy,
	}

	stmt := `INSERT INTO calendar_event (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return create, nil
}

func (d *DB) ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.CalendarID; v != nil {
		where, args = append(where, "calendar_id = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	if v := find.ExcludeStatus; v != nil {
		where, args = append(where, "status != ?"), append(args, *v)
	}
	// Half-open overlap with the query range: start < range_end AND end > range_start.
	if v := find.EndTs; v != nil {
		where, args = append(where, "start_ts < ?"), append(args, *v)
	}
	if v := find.StartTs; v != nil {
		where, args = append(where, "end_ts > ?"), append(args, *v)
	}

	query := `
		SELECT
			id, uid, calendar_id, creator_id, created_ts, updated_ts,
			title, description, location,
			start_ts, end_ts, timezone, status, created_by
		FROM calendar_event
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.CalendarEvent, 0)
	for rows.Next() {
		var event store.CalendarEvent
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.CalendarID,
			&event.CreatorID,
			&event.CreatedTs,
			&event.UpdatedTs,
			&event.Title,
			&event.Description,
			&event.Location,
			&event.StartTs,
			&event.EndTs,
			&event.Timezone,
			&event.Status,
			&event.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		list = append(list, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) GetCalendarEvent(ctx context.Context, find *store.FindCalendarEvent) (*store.CalendarEvent, error) {
	list, err := d.ListCalendarEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) UpdateCalendarEvent(ctx context.Context, update *store.UpdateCalendarEvent) error {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = ?"), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = ?"), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = ?"), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = ?"), append(args, *v)
	}
	if v := update.Timezone; v != nil {
		set, args = append(set, "timezone = ?"), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.ID)

	stmt := `UPDATE calendar_event SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
