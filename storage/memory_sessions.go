package storage

import (
	"avito-position-probe/models"
	"context"
	"slices"
	"sync"
)

// MemorySessionStore keeps sessions for the lifetime of the process.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]models.Session)}
}

// Load returns a copy of the session for chatID, or a fresh idle session.
func (s *MemorySessionStore) Load(_ context.Context, chatID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return &models.Session{ChatID: chatID, State: models.StateIdle}, nil
	}
	session.Regions = slices.Clone(session.Regions)
	return &session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	stored.Regions = slices.Clone(session.Regions)
	s.sessions[session.ChatID] = stored
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}

func (s *MemorySessionStore) Close() {}
