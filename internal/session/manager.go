package session

import (
	"errors"
	"sync"

	"aistats/domain/core"
	"aistats/internal/analysis"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// Manager maps session ids to live sessions
type Manager struct {
	mu         sync.RWMutex
	sessions   map[core.SessionID]*Session
	engineOpts []analysis.Option
	initialize func(*Session)
}

// NewManager creates a manager; engine options apply to every new session
func NewManager(engineOpts ...analysis.Option) *Manager {
	return &Manager{
		sessions:   make(map[core.SessionID]*Session),
		engineOpts: engineOpts,
	}
}

// OnCreate registers a hook run on every new session before it is published,
// e.g. to preload a shared dataset. Datasets are read-only and safe to share.
func (m *Manager) OnCreate(fn func(*Session)) {
	m.mu.Lock()
	m.initialize = fn
	m.mu.Unlock()
}

func (m *Manager) newSession(id core.SessionID) *Session {
	s := New(id, m.engineOpts...)
	if m.initialize != nil {
		m.initialize(s)
	}
	return s
}

// Create starts a new session with a fresh id
func (m *Manager) Create() *Session {
	m.mu.RLock()
	s := m.newSession(core.SessionID(core.NewID()))
	m.mu.RUnlock()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session
func (m *Manager) Get(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for raw, creating one when raw is empty or
// names a well-formed id that is not yet known. created reports a new session.
func (m *Manager) GetOrCreate(raw string) (s *Session, created bool, err error) {
	if raw == "" {
		return m.Create(), true, nil
	}
	id, err := core.ParseSessionID(raw)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, false, nil
	}
	s = m.newSession(id)
	m.sessions[id] = s
	return s, true, nil
}

// Delete forgets a session
func (m *Manager) Delete(id core.SessionID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
