package apiv1

import (
	"net/http"

	"github.com/andrebq/authbox/auth"
	authapi "github.com/andrebq/authbox/auth/api"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/logutil"
)

type (
	sessionNamer interface {
		SessionName() string
	}
)

func login(users Users, sessions auth.SessionStrategy, hasher auth.PasswordHasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		if email == "" {
			authapi.WriteError(w, http.StatusBadRequest, "email missing")
			return
		}
		password := r.PostFormValue("password")
		if password == "" {
			authapi.WriteError(w, http.StatusBadRequest, "password missing")
			return
		}
		ctx := r.Context()
		found, err := users.Search(ctx, directory.Filter{Email: email})
		if err != nil {
			internalError(w, r, err)
			return
		}
		if len(found) == 0 {
			authapi.WriteError(w, http.StatusNotFound, "no user found for this email")
			return
		}
		user := found[0]
		if !hasher.Verify(user.PasswordHash, password) {
			authapi.WriteError(w, http.StatusUnauthorized, "wrong password")
			return
		}
		sessionID, err := sessions.CreateSession(ctx, user.ID)
		if err != nil {
			internalError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName(sessions),
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
		})
		log := logutil.GetOrDefault(ctx)
		log.Info().Str("user_id", user.ID).Msg("User logged in")
		authapi.WriteJSON(w, http.StatusOK, user)
	}
}

func logout(sessions auth.SessionStrategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		destroyed, err := sessions.DestroySession(r)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if !destroyed {
			authapi.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		authapi.WriteJSON(w, http.StatusOK, struct{}{})
	}
}

func cookieName(s auth.Strategy) string {
	if n, ok := s.(sessionNamer); ok {
		return n.SessionName()
	}
	return auth.DefaultSessionName
}
