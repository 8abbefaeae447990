package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/authbox/auth"
	authapi "github.com/andrebq/authbox/auth/api"
	"github.com/andrebq/authbox/internal/httpserver"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/andrebq/authbox/usersvc"
	"github.com/julienschmidt/httprouter"
)

const (
	SessionCookie = "session_id"
)

type (
	message map[string]string
)

func AsHandler(ctx context.Context, a *usersvc.Auth) http.Handler {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteError(w, http.StatusNotFound, "Not found")
	})

	router.HandlerFunc("GET", "/", func(w http.ResponseWriter, r *http.Request) {
		authapi.WriteJSON(w, http.StatusOK, message{"message": "Bienvenue"})
	})
	router.HandlerFunc("POST", "/users", register(a))
	router.HandlerFunc("POST", "/sessions", login(a))
	router.HandlerFunc("DELETE", "/sessions", logout(a))
	router.HandlerFunc("GET", "/profile", profile(a))
	router.HandlerFunc("POST", "/reset_password", resetToken(a))
	router.HandlerFunc("PUT", "/reset_password", updatePassword(a))

	return logutil.Middleware(logutil.GetOrDefault(ctx), httpserver.TrimTrailingSlash(router))
}

func register(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		_, err := a.RegisterUser(r.Context(), email, r.PostFormValue("password"))
		var exists usersvc.UserExists
		var missing usersvc.MissingCredentials
		var tooLong auth.PasswordTooLong
		switch {
		case errors.As(err, &exists):
			authapi.WriteJSON(w, http.StatusBadRequest, message{"message": "email already registered"})
		case errors.As(err, &missing):
			authapi.WriteJSON(w, http.StatusBadRequest, message{"message": missing.Error()})
		case errors.As(err, &tooLong):
			authapi.WriteJSON(w, http.StatusBadRequest, message{"message": tooLong.Error()})
		case err != nil:
			internalError(w, r, err)
		default:
			authapi.WriteJSON(w, http.StatusOK, message{"email": email, "message": "user created"})
		}
	}
}

func login(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		email := r.PostFormValue("email")
		ok, err := a.ValidLogin(ctx, email, r.PostFormValue("password"))
		if err != nil {
			internalError(w, r, err)
			return
		} else if !ok {
			authapi.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sessionID, err := a.CreateSession(ctx, email)
		if err != nil {
			internalError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sessionID, Path: "/", HttpOnly: true})
		authapi.WriteJSON(w, http.StatusOK, message{"email": email, "message": "logged in"})
	}
}

func logout(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u, err := a.GetUserFromSessionID(ctx, sessionID(r))
		if err != nil {
			internalError(w, r, err)
			return
		} else if u == nil {
			authapi.WriteError(w, http.StatusForbidden, "Forbidden")
			return
		}
		if err := a.DestroySession(ctx, u.ID); err != nil {
			internalError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func profile(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := a.GetUserFromSessionID(r.Context(), sessionID(r))
		if err != nil {
			internalError(w, r, err)
			return
		} else if u == nil {
			authapi.WriteError(w, http.StatusForbidden, "Forbidden")
			return
		}
		authapi.WriteJSON(w, http.StatusOK, message{"email": u.Email})
	}
}

func resetToken(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		token, err := a.GetResetPasswordToken(r.Context(), email)
		var unknown usersvc.UnknownEmail
		if errors.As(err, &unknown) {
			authapi.WriteError(w, http.StatusForbidden, "Forbidden")
			return
		} else if err != nil {
			internalError(w, r, err)
			return
		}
		authapi.WriteJSON(w, http.StatusOK, message{"email": email, "reset_token": token})
	}
}

func updatePassword(a *usersvc.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		err := a.UpdatePassword(r.Context(), r.PostFormValue("reset_token"), r.PostFormValue("new_password"))
		var invalid usersvc.InvalidResetToken
		var missing usersvc.MissingCredentials
		var tooLong auth.PasswordTooLong
		switch {
		case errors.As(err, &invalid), errors.As(err, &missing), errors.As(err, &tooLong):
			authapi.WriteError(w, http.StatusForbidden, "Forbidden")
		case err != nil:
			internalError(w, r, err)
		default:
			authapi.WriteJSON(w, http.StatusOK, message{"email": email, "message": "Password updated"})
		}
	}
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Unable to serve request")
	authapi.WriteError(w, http.StatusInternalServerError, "Internal server error")
}
