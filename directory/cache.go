package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// Cached keeps recently read users in memory, so the per-request
	// identity lookup does not always hit sqlite.
	Cached struct {
		*Directory
		cache *bigcache.BigCache
	}

	cachedUser struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"password_hash"`
		SessionID    string    `json:"session_id"`
		ResetToken   string    `json:"reset_token"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

// NewCached wraps d, a lifetime <= 0 disables caching.
func NewCached(d *Directory, lifetime time.Duration) (*Cached, error) {
	if lifetime <= 0 {
		return &Cached{Directory: d}, nil
	}
	cfg := bigcache.DefaultConfig(lifetime)
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create user cache, cause %w", err)
	}
	return &Cached{Directory: d, cache: cache}, nil
}

// OpenCached opens the directory stored at file with a read cache in front of it.
func OpenCached(ctx context.Context, file string, lifetime time.Duration) (*Cached, error) {
	d, err := Open(ctx, file)
	if err != nil {
		return nil, err
	}
	c, err := NewCached(d, lifetime)
	if err != nil {
		d.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cached) Get(ctx context.Context, id string) (*User, error) {
	if c.cache == nil {
		return c.Directory.Get(ctx, id)
	}
	if buf, err := c.cache.Get(id); err == nil {
		var cu cachedUser
		if err := json.Unmarshal(buf, &cu); err == nil {
			u := User(cu)
			return &u, nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, fmt.Errorf("unable to read user %v from cache, cause %w", id, err)
	}
	u, err := c.Directory.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(cachedUser(*u))
	if err == nil {
		c.cache.Set(id, buf)
	}
	return u, nil
}

// Save writes u and drops its cache entry both before and after the write.
func (c *Cached) Save(ctx context.Context, u *User) error {
	if u.ID != "" {
		c.forget(u.ID)
	}
	err := c.Directory.Save(ctx, u)
	c.forget(u.ID)
	return err
}

func (c *Cached) Remove(ctx context.Context, u *User) error {
	c.forget(u.ID)
	err := c.Directory.Remove(ctx, u)
	c.forget(u.ID)
	return err
}

func (c *Cached) forget(id string) {
	if c.cache == nil {
		return
	}
	// a failed delete only means the entry was never cached
	_ = c.cache.Delete(id)
}

func (c *Cached) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	return c.Directory.Close()
}
