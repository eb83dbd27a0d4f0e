package store

import (
	"context"
	"sync"

	"githubPushRelay/internal/model"
)

// Memory is an in-process ordered set of tokens. It never returns errors.
// The zero value is ready to use.
type Memory struct {
	mu     sync.RWMutex
	tokens []string
	index  map[string]int
}

func NewMemory() *Memory {
	return &Memory{index: make(map[string]int)}
}

func (m *Memory) Register(_ context.Context, token string) (model.RegisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, ok := m.index[token]; ok {
		return model.RegisterResult{AlreadyRegistered: true, Total: len(m.tokens)}, nil
	}
	m.index[token] = len(m.tokens)
	m.tokens = append(m.tokens, token)
	return model.RegisterResult{Total: len(m.tokens)}, nil
}

func (m *Memory) Unregister(_ context.Context, token string) (model.UnregisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[token]
	if !ok {
		return model.UnregisterResult{Total: len(m.tokens)}, nil
	}
	m.tokens = append(m.tokens[:i], m.tokens[i+1:]...)
	delete(m.index, token)
	for j := i; j < len(m.tokens); j++ {
		m.index[m.tokens[j]] = j
	}
	return model.UnregisterResult{Found: true, Total: len(m.tokens)}, nil
}

// Snapshot returns a copy; later mutations never show through it.
func (m *Memory) Snapshot(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens), nil
}
