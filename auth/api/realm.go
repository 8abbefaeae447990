package api

import (
	"context"
	"net/http"

	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/logutil"
)

type (
	// Realm guards a handler with an authentication strategy.
	Realm struct {
		strategy auth.Strategy
		excluded []string
	}

	userKey struct{}
)

// NewRealm protects every path not matched by excluded. A nil strategy
// disables authentication.
func NewRealm(strategy auth.Strategy, excluded []string) *Realm {
	return &Realm{
		strategy: strategy,
		excluded: append([]string(nil), excluded...),
	}
}

func (s *Realm) Strategy() auth.Strategy { return s.strategy }

func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.strategy == nil || !s.strategy.RequireAuth(r.URL.Path, s.excluded) {
			sensitive.ServeHTTP(w, r)
			return
		}
		if s.strategy.AuthorizationHeader(r) == "" && s.strategy.SessionCookie(r) == "" {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, err := s.strategy.CurrentUser(r)
		if err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Unable to resolve current user")
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if user == nil {
			WriteError(w, http.StatusForbidden, "Forbidden")
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, u *directory.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser returns the user authenticated by Protect, nil if none.
func CurrentUser(ctx context.Context) *directory.User {
	u, _ := ctx.Value(userKey{}).(*directory.User)
	return u
}
