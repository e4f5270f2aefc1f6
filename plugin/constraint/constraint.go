// Package constraint talks to the external logic engine that provides
// advisory scheduling validation. The engine is optional: callers must
// treat a failed or skipped check as non-fatal.
package constraint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
)

// Client is the constraint engine client interface.
type Client interface {
	// Query executes a goal against the engine.
	Query(ctx context.Context, goal string) (map[string]any, error)

	// IsAvailable reports whether the engine is reachable.
	IsAvailable(ctx context.Context) bool
}

// Validation is the advisory result attached to execution responses.
// Checked is false when the engine was unreachable or errored; the
// Note explains why the check was skipped.
type Validation struct {
	Checked    bool           `json:"checked"`
	Constraint string         `json:"constraint,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Note       string         `json:"note,omitempty"`
}

// Degraded builds the Validation for a failed advisory check.
func Degraded(err error) *Validation {
	return &Validation{
		Checked: false,
		Error:   err.Error(),
		Note:    "constraint validation skipped due to error",
	}
}

// CheckOverlapGoal builds the overlap goal. Times are RFC 3339.
func CheckOverlapGoal(calendarID int32, start, end, excludeUID string) string {
	if excludeUID != "" {
		return fmt.Sprintf("check_overlap(%d, '%s', '%s', '%s')", calendarID, start, end, excludeUID)
	}
	return fmt.Sprintf("check_overlap(%d, '%s', '%s')", calendarID, start, end)
}

// FreeSlotsGoal builds the free slot search goal. Dates are ISO dates.
func FreeSlotsGoal(calendarID int32, startDate, endDate string, durationMinutes int) string {
	return fmt.Sprintf("find_free_slots(%d, '%s', '%s', %d, Slots)", calendarID, startDate, endDate, durationMinutes)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a Client for the engine at baseURL. The
// timeout is mandatory; zero falls back to 5 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientFromProfile creates a Client from the server profile. It
// returns nil when no engine is configured.
func NewClientFromProfile(p *profile.Profile) Client {
	if p.ConstraintEngineURL == "" {
		return nil
	}
	return NewHTTPClient(p.ConstraintEngineURL, time.Duration(p.ConstraintEngineTimeout)*time.Second)
}

func (c *httpClient) Query(ctx context.Context, goal string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"query": goal})
	if err != nil {
		return nil, errors.Wrap(err, "marshal goal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "constraint engine unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("constraint engine returned status %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode engine response")
	}
	return result, nil
}

func (c *httpClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
