package ai

import (
	"context"
	"sync"
)

// MockClient is a Client stub for tests.
type MockClient struct {
	mu sync.Mutex

	Response    string
	Err         error
	Unavailable bool

	// Prompts records the user prompts passed to Generate.
	Prompts []string
}

func (m *MockClient) Generate(_ context.Context, _, userPrompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, userPrompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockClient) IsAvailable(_ context.Context) bool {
	return !m.Unavailable
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
