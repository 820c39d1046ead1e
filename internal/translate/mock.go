package translate

import (
	"context"
	"sync"
)

// MockTranslator is a Translator for tests.
type MockTranslator struct {
	TranslateFunc func(ctx context.Context, texts []string) (map[string]string, error)

	mu    sync.Mutex
	Calls [][]string
}

func (m *MockTranslator) Translate(ctx context.Context, texts []string) (map[string]string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string(nil), texts...))
	m.mu.Unlock()
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, texts)
	}
	return map[string]string{}, nil
}
