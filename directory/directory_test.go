package directory

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	bob, err := d.AddUser(ctx, "bob@example.com", "hash-1")
	if err != nil {
		t.Fatal(err)
	}
	if bob.ID == "" {
		t.Fatal("AddUser should assign an id")
	}

	found, err := d.Get(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, bob.Email, found.Email)
	require.Equal(t, "hash-1", found.PasswordHash)
	require.Empty(t, found.SessionID)

	found.SessionID = "abc"
	found.ResetToken = "reset"
	if err := d.Save(ctx, found); err != nil {
		t.Fatal(err)
	}
	bySession, err := d.FindUserBy(ctx, Filter{SessionID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, bob.ID, bySession.ID)
	require.Equal(t, "reset", bySession.ResetToken)

	n, err := d.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	if err := d.Remove(ctx, bySession); err != nil {
		t.Fatal(err)
	}
	_, err = d.Get(ctx, bob.ID)
	if !errors.Is(err, UserNotFound{ID: bob.ID}) {
		t.Fatalf("Error should be UserNotFound got %#v", err)
	}
	require.True(t, IsNotFound(err))
}

func TestSearchByEmail(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	for _, email := range []string{"ana@example.com", "ana@example.com", "charlie@example.com"} {
		if _, err := d.AddUser(ctx, email, "h"); err != nil {
			t.Fatal(err)
		}
	}
	users, err := d.Search(ctx, Filter{Email: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, users, 2)

	users, err = d.Search(ctx, Filter{Email: "nobody@example.com"})
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Len(t, users, 0)

	_, err = d.FindUserBy(ctx, Filter{Email: "nobody@example.com"})
	require.True(t, IsNotFound(err))

	_, err = d.Search(ctx, Filter{})
	if !errors.Is(err, InvalidFilter{}) {
		t.Fatalf("Empty filter should be rejected, got %v", err)
	}

	all, err := d.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestUserSessions(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	created := time.Date(2022, 5, 1, 10, 0, 0, 0, time.UTC)
	err := d.SaveSession(ctx, UserSession{UserID: "42", SessionID: "s1", CreatedAt: created})
	require.NoError(t, err)
	err = d.SaveSession(ctx, UserSession{UserID: "42", SessionID: "s2"})
	require.NoError(t, err)

	sessions, err := d.SearchSessions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "42", sessions[0].UserID)
	require.True(t, created.Equal(sessions[0].CreatedAt))

	sessions, err = d.SearchSessions(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.True(t, sessions[0].CreatedAt.IsZero(), "missing timestamp should load as zero time")

	require.NoError(t, d.RemoveSession(ctx, sessions[0]))
	sessions, err = d.SearchSessions(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, sessions, 0)
}

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()
	c, err := NewCached(d, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	u, err := c.AddUser(ctx, "bob@example.com", "hash-1")
	require.NoError(t, err)

	first, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-1", first.PasswordHash)

	// bypass the cache, the stale entry must still be served
	_, err = d.db.ExecContext(ctx, `update users set email = 'changed@example.com' where user_id = ?`, u.ID)
	require.NoError(t, err)
	cached, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", cached.Email)
	require.Equal(t, "hash-1", cached.PasswordHash)

	cached.SessionID = "abc"
	require.NoError(t, c.Save(ctx, cached))
	fresh, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "abc", fresh.SessionID)

	require.NoError(t, c.Remove(ctx, fresh))
	_, err = c.Get(ctx, u.ID)
	require.True(t, IsNotFound(err))
}

func TestCachedSaveDuringRead(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()
	c, err := NewCached(d, time.Minute)
	require.NoError(t, err)

	u, err := c.AddUser(ctx, "bob@example.com", "old-hash")
	require.NoError(t, err)

	// a reader refills the cache with the stored row while Save is running
	d.now = func() time.Time {
		_, err := c.Get(ctx, u.ID)
		require.NoError(t, err)
		return time.Now()
	}
	update := *u
	update.PasswordHash = "new-hash"
	require.NoError(t, c.Save(ctx, &update))
	d.now = time.Now

	fresh, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", fresh.PasswordHash)

	require.NoError(t, c.Remove(ctx, fresh))
	_, err = c.Get(ctx, u.ID)
	require.True(t, IsNotFound(err))
}

func TestCacheDisabled(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()
	c, err := NewCached(d, 0)
	require.NoError(t, err)

	u, err := c.AddUser(ctx, "bob@example.com", "hash-1")
	require.NoError(t, err)
	_, err = d.db.ExecContext(ctx, `update users set email = 'changed@example.com' where user_id = ?`, u.ID)
	require.NoError(t, err)
	fresh, err := c.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "changed@example.com", fresh.Email)
}

func tempDirectory(ctx context.Context, t interface {
	Fatal(...interface{})
	Log(...interface{})
}) (*Directory, func()) {
	dir, err := ioutil.TempDir("", "authbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	d, err := Open(ctx, filepath.Join(dir, "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	return d, func() {
		d.Close()
		err := os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
