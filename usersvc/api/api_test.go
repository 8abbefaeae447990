package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/testutil"
	"github.com/andrebq/authbox/usersvc"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"golang.org/x/crypto/bcrypt"
)

const (
	email     = "guillaume@holberton.io"
	passwd    = "b4l0u"
	newPasswd = "t4rt1fl3tt3"
)

func cookieValue(t *testing.T, res apitest.Result, name string) string {
	for _, c := range res.Response.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %v not found", name)
	return ""
}

func TestUserServiceFlow(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.AcquireDirectory(ctx, t)
	defer cleanup()
	handler := AsHandler(ctx, usersvc.NewAuth(dir, auth.BcryptHasher{Cost: bcrypt.MinCost}))

	logIn := func(pw string) string {
		res := apitest.Handler(handler).Post("/sessions").FormData("email", email).FormData("password", pw).
			Expect(t).Status(http.StatusOK).
			Body(`{"email":"` + email + `","message":"logged in"}`).
			CookiePresent(SessionCookie).
			End()
		return cookieValue(t, res, SessionCookie)
	}

	apitest.Handler(handler).Get("/").Expect(t).Status(http.StatusOK).Body(`{"message":"Bienvenue"}`).End()

	apitest.Handler(handler).Post("/users").FormData("email", email).FormData("password", passwd).
		Expect(t).Status(http.StatusOK).Body(`{"email":"` + email + `","message":"user created"}`).End()
	apitest.Handler(handler).Post("/users/").FormData("email", email).FormData("password", passwd).
		Expect(t).Status(http.StatusBadRequest).Body(`{"message":"email already registered"}`).End()

	apitest.Handler(handler).Post("/sessions").FormData("email", email).FormData("password", newPasswd).
		Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Get("/profile").Expect(t).Status(http.StatusForbidden).End()

	sessionID := logIn(passwd)
	apitest.Handler(handler).Get("/profile").Cookie(SessionCookie, sessionID).
		Expect(t).Status(http.StatusOK).Assert(jsonpath.Equal("$.email", email)).End()

	apitest.Handler(handler).Delete("/sessions").Cookie(SessionCookie, sessionID).
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()
	apitest.Handler(handler).Delete("/sessions").Cookie(SessionCookie, sessionID).
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(handler).Get("/profile").Cookie(SessionCookie, sessionID).
		Expect(t).Status(http.StatusForbidden).End()

	apitest.Handler(handler).Post("/reset_password").FormData("email", "nobody@holberton.io").
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(handler).Post("/reset_password").FormData("email", email).
		Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.email", email)).
		Assert(jsonpath.Present("$.reset_token")).
		End()
	u, err := dir.FindUserBy(ctx, directory.Filter{Email: email})
	if err != nil {
		t.Fatal(err)
	}

	apitest.Handler(handler).Put("/reset_password").
		FormData("email", email).FormData("reset_token", "bogus").FormData("new_password", newPasswd).
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(handler).Put("/reset_password").
		FormData("email", email).FormData("reset_token", u.ResetToken).FormData("new_password", newPasswd).
		Expect(t).Status(http.StatusOK).Body(`{"email":"` + email + `","message":"Password updated"}`).End()

	logIn(newPasswd)
}

func TestLongPasswords(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.AcquireDirectory(ctx, t)
	defer cleanup()
	handler := AsHandler(ctx, usersvc.NewAuth(dir, auth.BcryptHasher{Cost: bcrypt.MinCost}))
	long := strings.Repeat("p", 73)

	apitest.Handler(handler).Post("/users").FormData("email", "bob@example.com").FormData("password", long).
		Expect(t).Status(http.StatusBadRequest).
		Body(`{"message":"password must not exceed 72 bytes"}`).
		End()
	n, err := dir.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("no user should be created, found %v", n)
	}

	apitest.Handler(handler).Post("/users").FormData("email", "bob@example.com").FormData("password", passwd).
		Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Post("/reset_password").FormData("email", "bob@example.com").
		Expect(t).Status(http.StatusOK).End()
	u, err := dir.FindUserBy(ctx, directory.Filter{Email: "bob@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	apitest.Handler(handler).Put("/reset_password").
		FormData("email", "bob@example.com").FormData("reset_token", u.ResetToken).FormData("new_password", long).
		Expect(t).Status(http.StatusForbidden).End()

	// the token survives a rejected update
	apitest.Handler(handler).Put("/reset_password").
		FormData("email", "bob@example.com").FormData("reset_token", u.ResetToken).FormData("new_password", newPasswd).
		Expect(t).Status(http.StatusOK).End()
}
