package auth

import (
	"context"
	"time"
)

type (
	// ExpiringSessions wraps MemorySessions and stops honoring a token
	// once it is older than the session duration. A duration <= 0
	// disables expiry. Expired records stay in the store.
	ExpiringSessions struct {
		inner    *MemorySessions
		duration time.Duration
		now      func() time.Time
	}
)

func NewExpiringSessions(inner *MemorySessions, duration time.Duration, now func() time.Time) *ExpiringSessions {
	if inner == nil {
		inner = NewMemorySessions(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &ExpiringSessions{inner: inner, duration: duration, now: now}
}

func (e *ExpiringSessions) Duration() time.Duration { return e.duration }

func (e *ExpiringSessions) Create(ctx context.Context, userID string) (string, error) {
	sessionID, err := e.inner.Create(ctx, userID)
	if err != nil || sessionID == "" {
		return "", err
	}
	e.inner.Store().Put(sessionID, SessionRecord{UserID: userID, CreatedAt: e.now()})
	return sessionID, nil
}

func (e *ExpiringSessions) Lookup(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	rec, ok := e.inner.Store().Get(sessionID)
	if !ok {
		return "", nil
	}
	return e.valid(rec.UserID, rec.CreatedAt), nil
}

func (e *ExpiringSessions) Destroy(ctx context.Context, sessionID string) (bool, error) {
	return e.inner.Destroy(ctx, sessionID)
}

// valid applies the expiry rule to a session owned by userID.
func (e *ExpiringSessions) valid(userID string, createdAt time.Time) string {
	if e.duration <= 0 {
		return userID
	}
	if createdAt.IsZero() {
		return ""
	}
	if createdAt.Add(e.duration).Before(e.now()) {
		return ""
	}
	return userID
}
