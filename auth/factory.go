package auth

import (
	"fmt"
	"time"

	"github.com/andrebq/authbox/directory"
)

type (
	// Kind names a strategy, it is the value of AUTH_TYPE.
	Kind string

	// Users is everything the strategies need from the user directory.
	Users interface {
		UserFinder
		UserGetter
		SessionRepository
	}

	Options struct {
		Users           Users
		Hasher          PasswordHasher
		SessionName     string
		SessionDuration time.Duration
		// Store is shared by the in-memory session layers, a new one
		// is created when nil.
		Store *SessionStore
		Now   func() time.Time
	}
)

const (
	KindNone          = Kind("")
	KindBasic         = Kind("basic_auth")
	KindSession       = Kind("session_auth")
	KindSessionExpiry = Kind("session_exp_auth")
	KindSessionDB     = Kind("session_db_auth")
)

var (
	_ Users = (*directory.Directory)(nil)
	_ Users = (*directory.Cached)(nil)

	_ Strategy        = (*BasicAuth)(nil)
	_ SessionStrategy = (*SessionAuth)(nil)
	_ SessionLayer    = (*MemorySessions)(nil)
	_ SessionLayer    = (*ExpiringSessions)(nil)
	_ SessionLayer    = (*PersistedSessions)(nil)
)

// New builds the strategy selected by kind. KindNone returns a nil
// strategy, meaning requests are not authenticated at all.
func New(kind Kind, opts Options) (Strategy, error) {
	base := NewAuth(opts.SessionName)
	if kind == KindNone {
		return nil, nil
	}
	if opts.Users == nil {
		return nil, fmt.Errorf("auth: strategy %v needs a user directory", kind)
	}
	switch kind {
	case KindBasic:
		return NewBasicAuth(base, opts.Users, opts.Hasher), nil
	case KindSession:
		return NewSessionAuth(base, NewMemorySessions(opts.Store), opts.Users), nil
	case KindSessionExpiry:
		layer := NewExpiringSessions(NewMemorySessions(opts.Store), opts.SessionDuration, opts.Now)
		return NewSessionAuth(base, layer, opts.Users), nil
	case KindSessionDB:
		layer := NewExpiringSessions(NewMemorySessions(opts.Store), opts.SessionDuration, opts.Now)
		return NewSessionAuth(base, NewPersistedSessions(layer, opts.Users), opts.Users), nil
	}
	return nil, fmt.Errorf("auth: unknown strategy %q", string(kind))
}
