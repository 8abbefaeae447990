package auth

import (
	"sync"
	"time"
)

type (
	// SessionRecord is what a session token points to. A zero CreatedAt
	// means the record was stored without a creation time.
	SessionRecord struct {
		UserID    string
		CreatedAt time.Time
	}

	// SessionStore maps session tokens to records, it is safe for concurrent use.
	SessionStore struct {
		lock     sync.RWMutex
		sessions map[string]SessionRecord
	}
)

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]SessionRecord),
	}
}

func (s *SessionStore) Put(sessionID string, rec SessionRecord) {
	s.lock.Lock()
	s.sessions[sessionID] = rec
	s.lock.Unlock()
}

func (s *SessionStore) Get(sessionID string) (SessionRecord, bool) {
	s.lock.RLock()
	rec, ok := s.sessions[sessionID]
	s.lock.RUnlock()
	return rec, ok
}

// Delete removes sessionID and reports whether it was present.
func (s *SessionStore) Delete(sessionID string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

func (s *SessionStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.sessions)
}
