package constraint

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a Client stub for tests.
type MockClient struct {
	mu sync.Mutex

	Err         error
	Unavailable bool

	// Goals records every goal passed to Query.
	Goals []string
}

func (m *MockClient) Query(_ context.Context, goal string) (map[string]any, error) {
	m.mu.Lock()
	m.Goals = append(m.Goals, goal)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	switch {
	case strings.HasPrefix(goal, "check_overlap"):
		return map[string]any{"success": true, "has_overlap": false, "conflicts": []any{}}, nil
	case strings.HasPrefix(goal, "find_free_slots"):
		return map[string]any{
			"success": true,
			"slots": []any{
				map[string]any{"start": "09:00", "end": "10:00"},
				map[string]any{"start": "14:00", "end": "15:00"},
			},
		}, nil
	}
	return map[string]any{"success": true}, nil
}

func (m *MockClient) IsAvailable(_ context.Context) bool {
	return !m.Unavailable
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Goals)
}
