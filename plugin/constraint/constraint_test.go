package constraint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOverlapGoal(t *testing.T) {
	goal := CheckOverlapGoal(3, "2026-01-10T10:00:00Z", "2026-01-10T11:00:00Z", "")
	assert.Equal(t, "check_overlap(3, '2026-01-10T10:00:00Z', '2026-01-10T11:00:00Z')", goal)

	goal = CheckOverlapGoal(3, "2026-01-10T10:00:00Z", "2026-01-10T11:00:00Z", "abc123")
	assert.Equal(t, "check_overlap(3, '2026-01-10T10:00:00Z', '2026-01-10T11:00:00Z', 'abc123')", goal)
}

func TestFreeSlotsGoal(t *testing.T) {
	goal := FreeSlotsGoal(1, "2026-01-10", "2026-01-12", 45)
	assert.Equal(t, "find_free_slots(1, '2026-01-10', '2026-01-12', 45, Slots)", goal)
}

func TestHTTPClientQuery(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(map[string]any{"success": true, "has_overlap": false})
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 2*time.Second)
	result, err := client.Query(context.Background(), "check_overlap(1, 'a', 'b')")
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "check_overlap(1, 'a', 'b')", received["query"])

	assert.True(t, client.IsAvailable(context.Background()))
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 2*time.Second)
	_, err := client.Query(context.Background(), "check_overlap(1, 'a', 'b')")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.False(t, client.IsAvailable(context.Background()))
}

func TestHTTPClientUnreachable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Query(context.Background(), "check_overlap(1, 'a', 'b')")
	require.Error(t, err)

	v := Degraded(err)
	assert.False(t, v.Checked)
	assert.NotEmpty(t, v.Error)
	assert.Contains(t, v.Note, "skipped")
}
