package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/testutil"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"golang.org/x/crypto/bcrypt"
)

var excluded = []string{"/api/v1/status/", "/api/v1/unauthorized/", "/api/v1/forbidden/"}

func TestProtect(t *testing.T) {
	ctx := context.Background()
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	var bob *directory.User
	dir, cleanup := testutil.AcquirePopulatedDirectory(ctx, t, func(ctx context.Context, d *directory.Directory) error {
		hash, err := hasher.Hash("pwd")
		if err != nil {
			return err
		}
		bob, err = d.AddUser(ctx, "bob@example.com", hash)
		return err
	})
	defer cleanup()

	sr := NewRealm(auth.NewBasicAuth(auth.NewAuth(""), dir, hasher), excluded)
	var count uint32
	protected := sr.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint32(&count, 1)
		id := ""
		if u := CurrentUser(r.Context()); u != nil {
			id = u.ID
		}
		WriteJSON(w, http.StatusOK, map[string]string{"user": id})
	}))
	basic := func(s string) string { return "Basic " + base64.StdEncoding.EncodeToString([]byte(s)) }

	apitest.Handler(protected).Get("/api/v1/status").Expect(t).Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user", "")).End()
	apitest.Handler(protected).Get("/api/v1/users").Expect(t).Status(http.StatusUnauthorized).
		Body(`{"error":"Unauthorized"}`).End()
	apitest.Handler(protected).Get("/api/v1/users").Header("Authorization", "Bearer abc").
		Expect(t).Status(http.StatusForbidden).Body(`{"error":"Forbidden"}`).End()
	apitest.Handler(protected).Get("/api/v1/users").Header("Authorization", basic("bob@example.com:wrong")).
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(protected).Get("/api/v1/users").Header("Authorization", basic("bob@example.com:pwd")).
		Expect(t).Status(http.StatusOK).Assert(jsonpath.Equal("$.user", bob.ID)).End()

	if count != 2 {
		t.Fatalf("protected endpoint should have been called twice, got %v", count)
	}
}

func TestProtectWithSessionCookie(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.AcquireDirectory(ctx, t)
	defer cleanup()
	bob, err := dir.AddUser(ctx, "bob@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	sa := auth.NewSessionAuth(auth.NewAuth("sid"), auth.NewMemorySessions(nil), dir)
	token, err := sa.CreateSession(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	protected := NewRealm(sa, excluded).Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, CurrentUser(r.Context()))
	}))

	apitest.Handler(protected).Get("/api/v1/users/me").Cookie("sid", token).
		Expect(t).Status(http.StatusOK).Assert(jsonpath.Equal("$.email", "bob@example.com")).End()
	apitest.Handler(protected).Get("/api/v1/users/me").Cookie("sid", "forged").
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(protected).Get("/api/v1/users/me").Cookie("other", token).
		Expect(t).Status(http.StatusUnauthorized).End()
}

type failingStrategy struct {
	auth.Auth
}

func (failingStrategy) CurrentUser(*http.Request) (*directory.User, error) {
	return nil, errors.New("database is gone")
}

func TestProtectStrategyFailure(t *testing.T) {
	protected := NewRealm(failingStrategy{auth.NewAuth("")}, nil).Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the strategy fails")
	}))
	apitest.Handler(protected).Get("/api/v1/users").Header("Authorization", "Basic abc").
		Expect(t).Status(http.StatusUnauthorized).End()
}

func TestProtectWithoutStrategy(t *testing.T) {
	protected := NewRealm(nil, nil).Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	apitest.Handler(protected).Get("/api/v1/users").Expect(t).Status(http.StatusNoContent).End()
}
