package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai"
)

func TestGetSettingsReturnsDefaults(t *testing.T) {
	e, _ := newTestAPI(t, &ai.MockClient{})

	rec := doJSON(t, e, http.MethodGet, "/api/v1/settings?user_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var settings Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, int32(1), settings.UserID)
	assert.Equal(t, "UTC", settings.Timezone)
	assert.Equal(t, "09:00", settings.DayStart)
	assert.Equal(t, "18:00", settings.DayEnd)
	assert.Equal(t, 10, settings.BufferMinutes)
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	e, ss := newTestAPI(t, &ai.MockClient{})

	rec := doJSON(t, e, http.MethodPut, "/api/v1/settings", `{
		"user_id": 1, "timezone": "Asia/Bangkok", "day_start": "08:00", "buffer_minutes": 0
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Asia/Bangkok", updated.Timezone)
	assert.Equal(t, "08:00", updated.DayStart)
	assert.Equal(t, "18:00", updated.DayEnd, "unspecified fields keep their defaults")
	assert.Equal(t, 0, updated.BufferMinutes)
	require.Contains(t, ss.settings, int32(1))

	got := doJSON(t, e, http.MethodGet, "/api/v1/settings?user_id=1", "")
	require.Equal(t, http.StatusOK, got.Code)
	var stored Settings
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &stored))
	assert.Equal(t, updated, stored)
}

func TestUpdateSettingsDrivesAvailability(t *testing.T) {
	e, _ := newTestAPI(t, &ai.MockClient{})

	rec := doJSON(t, e, http.MethodPut, "/api/v1/settings", `{
		"user_id": 1, "day_start": "08:00", "buffer_minutes": 0
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	avail := doJSON(t, e, http.MethodGet, "/api/v1/availability?calendar_id=1&user_id=1&date=2026-01-16", "")
	require.Equal(t, http.StatusOK, avail.Code)

	var body struct {
		Slots []map[string]string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(avail.Body.Bytes(), &body))
	require.Len(t, body.Slots, 1)
	assert.Equal(t, "2026-01-16T08:00:00Z", body.Slots[0]["start"])
	assert.Equal(t, "2026-01-16T18:00:00Z", body.Slots[0]["end"])
}

func TestUpdateSettingsValidation(t *testing.T) {
	e, ss := newTestAPI(t, &ai.MockClient{})

	tests := []struct {
		name string
		body string
	}{
		{"missing user_id", `{"timezone": "UTC"}`},
		{"bad timezone", `{"user_id": 1, "timezone": "Mars/Olympus_Mons"}`},
		{"negative buffer", `{"user_id": 1, "buffer_minutes": -5}`},
		{"bad day_start", `{"user_id": 1, "day_start": "8am"}`},
		{"inverted window", `{"user_id": 1, "day_start": "18:00", "day_end": "09:00"}`},
		{"day_end before stored start", `{"user_id": 1, "day_end": "08:00"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPut, "/api/v1/settings", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, ss.settings, "rejected updates must not be written")
}
