package auth

import (
	"context"
	"fmt"

	"github.com/andrebq/authbox/directory"
)

type (
	// PersistedSessions wraps ExpiringSessions. Tokens are still generated
	// by the parent, but only the rows kept by the repository are trusted.
	PersistedSessions struct {
		inner *ExpiringSessions
		repo  SessionRepository
	}
)

func NewPersistedSessions(inner *ExpiringSessions, repo SessionRepository) *PersistedSessions {
	return &PersistedSessions{inner: inner, repo: repo}
}

func (p *PersistedSessions) Create(ctx context.Context, userID string) (string, error) {
	sessionID, err := p.inner.Create(ctx, userID)
	if err != nil || sessionID == "" {
		return "", err
	}
	err = p.repo.SaveSession(ctx, directory.UserSession{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: p.inner.now(),
	})
	if err != nil {
		return "", fmt.Errorf("unable to persist session, cause %w", err)
	}
	return sessionID, nil
}

func (p *PersistedSessions) Lookup(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	s, err := p.find(ctx, sessionID)
	if err != nil || s == nil {
		return "", err
	}
	return p.inner.valid(s.UserID, s.CreatedAt), nil
}

func (p *PersistedSessions) Destroy(ctx context.Context, sessionID string) (bool, error) {
	s, err := p.find(ctx, sessionID)
	if err != nil || s == nil {
		return false, err
	}
	err = p.repo.RemoveSession(ctx, *s)
	if err != nil {
		return false, fmt.Errorf("unable to remove session, cause %w", err)
	}
	return true, nil
}

func (p *PersistedSessions) find(ctx context.Context, sessionID string) (*directory.UserSession, error) {
	rows, err := p.repo.SearchSessions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("unable to load session, cause %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
