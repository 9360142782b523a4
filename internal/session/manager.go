package session

import (
	"context"
	"sync"

	"spendbook/internal/store"
)

// Manager hands out one session per user, creating it on first use. Starting
// a session again reloads it, which is how the HTTP layer implements the
// login flow.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	opts     Options
	sessions map[string]*Session
}

func NewManager(st store.Store, opts Options) *Manager {
	return &Manager{
		store:    st,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Start creates or refreshes the session for user and loads its working set.
func (m *Manager) Start(ctx context.Context, user string) (*Session, error) {
	s, err := New(m.store, user, m.opts)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.User()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the live session for user, if one was started.
func (m *Manager) Get(user string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[user]
	return s, ok
}

// Drop forgets the session for user.
func (m *Manager) Drop(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, user)
}
