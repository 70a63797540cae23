// Package session owns per-user state: the dataset store, the engine bound to
// it and the committed conversation history.
package session

import (
	"sync"
	"time"

	"aistats/domain/conversation"
	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/internal/analysis"
)

// Session is one workbench session. Conversation turns are serialized with LockTurn.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	store  *Store
	engine *analysis.Engine

	turnMu sync.Mutex

	histMu  sync.RWMutex
	history []conversation.Turn
}

// New creates a session with an empty store
func New(id core.SessionID, opts ...analysis.Option) *Session {
	store := NewStore()
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		store:     store,
		engine:    analysis.NewEngine(store, opts...),
	}
}

func (s *Session) Store() *Store            { return s.store }
func (s *Session) Engine() *analysis.Engine { return s.engine }

// LockTurn blocks until no other turn is running and returns the release func
func (s *Session) LockTurn() func() {
	s.turnMu.Lock()
	return s.turnMu.Unlock
}

// ReplaceDataset loads a new dataset, clearing labels and the cached result
func (s *Session) ReplaceDataset(ds *dataset.Dataset) {
	s.store.Replace(ds)
	s.engine.ClearLastResult()
}

// ClearDataset removes the dataset, its labels and the cached result
func (s *Session) ClearDataset() {
	s.store.Clear()
	s.engine.ClearLastResult()
}

// History returns a snapshot of the committed turns
func (s *Session) History() []conversation.Turn {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	out := make([]conversation.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// AppendTurns commits turns atomically
func (s *Session) AppendTurns(turns ...conversation.Turn) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = append(s.history, turns...)
}

// ClearHistory discards the conversation; dataset and labels are kept
func (s *Session) ClearHistory() {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = nil
}
