package auth

import (
	"context"
	"net/http"

	"github.com/andrebq/authbox/directory"
)

const (
	DefaultSessionName = "_my_session_id"
)

type (
	// Strategy is the capability set shared by every authentication scheme.
	Strategy interface {
		RequireAuth(path string, excludedPaths []string) bool
		AuthorizationHeader(r *http.Request) string
		SessionCookie(r *http.Request) string
		// CurrentUser returns nil, nil when the request does not authenticate.
		CurrentUser(r *http.Request) (*directory.User, error)
	}

	// SessionStrategy is implemented by strategies that issue session tokens.
	SessionStrategy interface {
		Strategy
		CreateSession(ctx context.Context, userID string) (string, error)
		UserIDForSessionID(ctx context.Context, sessionID string) (string, error)
		DestroySession(r *http.Request) (bool, error)
	}

	// UserFinder searches users by attributes, returning an empty slice on no match.
	UserFinder interface {
		Search(ctx context.Context, f directory.Filter) ([]directory.User, error)
	}

	// UserGetter loads a single user, failing with directory.UserNotFound on a miss.
	UserGetter interface {
		Get(ctx context.Context, id string) (*directory.User, error)
	}

	// SessionRepository is the durable store used by PersistedSessions.
	SessionRepository interface {
		SaveSession(ctx context.Context, s directory.UserSession) error
		SearchSessions(ctx context.Context, sessionID string) ([]directory.UserSession, error)
		RemoveSession(ctx context.Context, s directory.UserSession) error
	}

	// Auth holds the behaviour common to all strategies. On its own it never
	// identifies anyone.
	Auth struct {
		sessionName string
	}
)

func NewAuth(sessionName string) Auth {
	if sessionName == "" {
		sessionName = DefaultSessionName
	}
	return Auth{sessionName: sessionName}
}

func (a Auth) RequireAuth(path string, excludedPaths []string) bool {
	return RequireAuth(path, excludedPaths)
}

func (a Auth) AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

// SessionCookie returns the value of the session cookie, empty when absent.
func (a Auth) SessionCookie(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(a.SessionName())
	if err != nil {
		return ""
	}
	return c.Value
}

func (a Auth) SessionName() string {
	if a.sessionName == "" {
		return DefaultSessionName
	}
	return a.sessionName
}

func (a Auth) CurrentUser(r *http.Request) (*directory.User, error) {
	return nil, nil
}

// lookupUser maps a missing user to nil, other failures are returned.
func lookupUser(ctx context.Context, users UserGetter, id string) (*directory.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := users.Get(ctx, id)
	if directory.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return u, nil
}
