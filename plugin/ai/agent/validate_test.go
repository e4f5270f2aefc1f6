package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentWith(t *testing.T, typ IntentType, data any) *Intent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &Intent{Type: typ, Confidence: 0.9, Data: raw}
}

func TestValidateCreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		data       CreateEventData
		wantFields []string
	}{
		{
			name: "valid",
			data: CreateEventData{Title: "x", Date: "2026-01-16", StartTime: "10:00", EndTime: "11:00"},
		},
		{
			name:       "missing title",
			data:       CreateEventData{Date: "2026-01-16", StartTime: "10:00", EndTime: "11:00"},
			wantFields: []string{"title"},
		},
		{
			name:       "bad date format",
			data:       CreateEventData{Title: "x", Date: "16/01/2026", StartTime: "10:00", EndTime: "11:00"},
			wantFields: []string{"date"},
		},
		{
			name:       "bad time format",
			data:       CreateEventData{Title: "x", Date: "2026-01-16", StartTime: "10am", EndTime: "11:00"},
			wantFields: []string{"start_time"},
		},
		{
			name:       "everything missing",
			data:       CreateEventData{},
			wantFields: []string{"title", "date", "start_time", "end_time"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePayload(intentWith(t, IntentCreateEvent, tt.data))
			require.Len(t, errs, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, errs[i].Field)
			}
		})
	}
}

func TestValidateFindFreeSlotsDurationBounds(t *testing.T) {
	for _, minutes := range []int{14, 481, 0, -5} {
		errs := ValidatePayload(intentWith(t, IntentFindFreeSlots, FindFreeSlotsData{
			DateRange:       DateRange{StartDate: "2026-01-16", EndDate: "2026-01-17"},
			DurationMinutes: minutes,
		}))
		require.Len(t, errs, 1, "minutes=%d", minutes)
		assert.Equal(t, "duration_minutes", errs[0].Field)
	}

	for _, minutes := range []int{15, 60, 480} {
		errs := ValidatePayload(intentWith(t, IntentFindFreeSlots, FindFreeSlotsData{
			DateRange:       DateRange{StartDate: "2026-01-16", EndDate: "2026-01-17"},
			DurationMinutes: minutes,
		}))
		assert.Empty(t, errs, "minutes=%d", minutes)
	}
}

func TestValidateMoveEventIdentification(t *testing.T) {
	errs := ValidatePayload(intentWith(t, IntentMoveEvent, MoveEventData{
		NewDate: "2026-01-19", NewStartTime: "14:00", NewEndTime: "15:00",
	}))
	require.Len(t, errs, 1)
	assert.Equal(t, "event_id", errs[0].Field)

	errs = ValidatePayload(intentWith(t, IntentMoveEvent, MoveEventData{
		Title: "dentist", NewDate: "2026-01-19", NewStartTime: "14:00", NewEndTime: "15:00",
	}))
	assert.Empty(t, errs)
}

func TestValidateDeleteEvent(t *testing.T) {
	errs := ValidatePayload(intentWith(t, IntentDeleteEvent, DeleteEventData{}))
	require.Len(t, errs, 1)

	errs = ValidatePayload(intentWith(t, IntentDeleteEvent, DeleteEventData{EventID: "abc"}))
	assert.Empty(t, errs)
}

func TestValidateMissingPayload(t *testing.T) {
	errs := ValidatePayload(&Intent{Type: IntentCreateEvent, Confidence: 0.9})
	require.Len(t, errs, 1)
	assert.Equal(t, "data", errs[0].Field)

	assert.Empty(t, ValidatePayload(&Intent{Type: IntentUnknown, Confidence: 0.3}))
}
