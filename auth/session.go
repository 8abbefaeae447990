package auth

import (
	"context"
	"net/http"

	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/google/uuid"
)

type (
	// SessionLayer decides what a session token means. Layers wrap each
	// other, each one overriding only what it changes.
	SessionLayer interface {
		Create(ctx context.Context, userID string) (string, error)
		// Lookup returns the user id behind sessionID, empty if the
		// session is unknown or no longer valid.
		Lookup(ctx context.Context, sessionID string) (string, error)
		Destroy(ctx context.Context, sessionID string) (bool, error)
	}

	// SessionAuth authenticates requests through a session cookie.
	SessionAuth struct {
		Auth
		layer SessionLayer
		users UserGetter
	}

	// MemorySessions keeps token -> user id in a SessionStore. Creating a
	// session never removes other sessions of the same user.
	MemorySessions struct {
		store *SessionStore
	}
)

func NewSessionAuth(base Auth, layer SessionLayer, users UserGetter) *SessionAuth {
	return &SessionAuth{Auth: base, layer: layer, users: users}
}

func (s *SessionAuth) Layer() SessionLayer { return s.layer }

// CreateSession issues a new token for userID, empty when userID is empty.
func (s *SessionAuth) CreateSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	return s.layer.Create(ctx, userID)
}

func (s *SessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	return s.layer.Lookup(ctx, sessionID)
}

func (s *SessionAuth) CurrentUser(r *http.Request) (*directory.User, error) {
	sessionID := s.SessionCookie(r)
	if sessionID == "" {
		return nil, nil
	}
	userID, err := s.UserIDForSessionID(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	return lookupUser(r.Context(), s.users, userID)
}

// DestroySession ends the session carried by r. It returns false when r has
// no cookie or the cookie does not resolve to a user.
func (s *SessionAuth) DestroySession(r *http.Request) (bool, error) {
	if r == nil {
		return false, nil
	}
	sessionID := s.SessionCookie(r)
	if sessionID == "" {
		return false, nil
	}
	ctx := r.Context()
	userID, err := s.UserIDForSessionID(ctx, sessionID)
	if err != nil {
		return false, err
	} else if userID == "" {
		return false, nil
	}
	destroyed, err := s.layer.Destroy(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if destroyed {
		log := logutil.GetOrDefault(ctx)
		log.Debug().Str("user_id", userID).Msg("Session destroyed")
	}
	return destroyed, nil
}

func NewMemorySessions(store *SessionStore) *MemorySessions {
	if store == nil {
		store = NewSessionStore()
	}
	return &MemorySessions{store: store}
}

func (m *MemorySessions) Store() *SessionStore { return m.store }

func (m *MemorySessions) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	sessionID := uuid.NewString()
	m.store.Put(sessionID, SessionRecord{UserID: userID})
	log := logutil.GetOrDefault(ctx)
	log.Debug().Str("user_id", userID).Msg("Session created")
	return sessionID, nil
}

func (m *MemorySessions) Lookup(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	rec, ok := m.store.Get(sessionID)
	if !ok {
		return "", nil
	}
	return rec.UserID, nil
}

func (m *MemorySessions) Destroy(_ context.Context, sessionID string) (bool, error) {
	return m.store.Delete(sessionID), nil
}
