package apiv1

import (
	"context"
	"net/http"

	"github.com/andrebq/authbox/auth"
	authapi "github.com/andrebq/authbox/auth/api"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/httpserver"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	// Users is the part of the directory served by the API.
	Users interface {
		auth.UserFinder
		auth.UserGetter
		All(ctx context.Context) ([]directory.User, error)
		Count(ctx context.Context) (int, error)
	}
)

var (
	// ExcludedPaths never require authentication.
	ExcludedPaths = []string{
		"/api/v1/status/",
		"/api/v1/unauthorized/",
		"/api/v1/forbidden/",
		"/api/v1/auth_session/login/",
	}
)

// AsHandler returns the v1 API guarded by strategy. The session routes
// are only mounted when strategy issues sessions.
func AsHandler(ctx context.Context, users Users, strategy auth.Strategy, hasher auth.PasswordHasher) http.Handler {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = false
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteError(w, http.StatusNotFound, "Not found")
	})

	router.HandlerFunc("GET", "/api/v1/status", status)
	router.HandlerFunc("GET", "/api/v1/stats", stats(users))
	router.HandlerFunc("GET", "/api/v1/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	})
	router.HandlerFunc("GET", "/api/v1/forbidden", func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteError(w, http.StatusForbidden, "Forbidden")
	})
	router.HandlerFunc("GET", "/api/v1/users", listUsers(users))
	router.GET("/api/v1/users/:user_id", getUser(users))

	if sessions, ok := strategy.(auth.SessionStrategy); ok {
		router.HandlerFunc("POST", "/api/v1/auth_session/login", login(users, sessions, hasher))
		router.HandlerFunc("DELETE", "/api/v1/auth_session/logout", logout(sessions))
	}

	realm := authapi.NewRealm(strategy, ExcludedPaths)
	return logutil.Middleware(logutil.GetOrDefault(ctx), allowAnyOrigin(httpserver.TrimTrailingSlash(realm.Protect(router))))
}

func status(w http.ResponseWriter, r *http.Request) {
	authapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func stats(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := users.Count(r.Context())
		if err != nil {
			internalError(w, r, err)
			return
		}
		authapi.WriteJSON(w, http.StatusOK, map[string]int{"users": n})
	}
}

func listUsers(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := users.All(r.Context())
		if err != nil {
			internalError(w, r, err)
			return
		}
		authapi.WriteJSON(w, http.StatusOK, all)
	}
}

func getUser(users Users) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id := p.ByName("user_id")
		if id == "me" {
			current := authapi.CurrentUser(r.Context())
			if current == nil {
				authapi.WriteError(w, http.StatusNotFound, "Not found")
				return
			}
			authapi.WriteJSON(w, http.StatusOK, current)
			return
		}
		u, err := users.Get(r.Context(), id)
		if directory.IsNotFound(err) {
			authapi.WriteError(w, http.StatusNotFound, "Not found")
			return
		} else if err != nil {
			internalError(w, r, err)
			return
		}
		authapi.WriteJSON(w, http.StatusOK, u)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Unable to serve request")
	authapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		next.ServeHTTP(w, r)
	})
}
