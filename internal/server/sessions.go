package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/identity"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionFactory builds a fresh chat session for an operator.
type SessionFactory func(op identity.Context) *chat.Session

type ownedSession struct {
	owner   string
	session *chat.Session
}

// Sessions keeps live chat sessions in memory. Dropping a session discards
// its transcript; nothing is persisted.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]ownedSession
	factory  SessionFactory
}

func NewSessions(factory SessionFactory) *Sessions {
	return &Sessions{sessions: make(map[string]ownedSession), factory: factory}
}

func (s *Sessions) Create(op identity.Context) (string, *chat.Session) {
	id := uuid.NewString()
	sess := s.factory(op)

	s.mu.Lock()
	s.sessions[id] = ownedSession{owner: op.UserID, session: sess}
	s.mu.Unlock()
	return id, sess
}

// Get returns the session only to the operator that created it.
func (s *Sessions) Get(op identity.Context, id string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok || e.owner != op.UserID {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

func (s *Sessions) Delete(op identity.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || e.owner != op.UserID {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
