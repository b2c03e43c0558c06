package memory

import (
	"context"
	"sync"

	"github.com/thebenzza/nonnon/internal/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.UserID]*domain.Session),
	}
}

func (s *SessionStore) Get(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(stored), nil
}

// Save applies the same compare-and-swap rule as the firestore adapter:
// the incoming version must match the stored one, then both advance.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.sessions[session.UserID]; ok && stored.Version != session.Version {
		return domain.ErrSessionConflict
	}

	saved := copySession(session)
	saved.Version++
	s.sessions[session.UserID] = saved
	session.Version = saved.Version
	return nil
}

func copySession(in *domain.Session) *domain.Session {
	out := *in
	out.Partial = make(map[string]string, len(in.Partial))
	for k, v := range in.Partial {
		out.Partial[k] = v
	}
	return &out
}
