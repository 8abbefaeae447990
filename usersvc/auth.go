package usersvc

import (
	"context"
	"fmt"

	"github.com/andrebq/authbox/auth"
	"github.com/andrebq/authbox/directory"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/google/uuid"
)

type (
	// Users is the slice of the directory the service works with.
	Users interface {
		FindUserBy(ctx context.Context, f directory.Filter) (*directory.User, error)
		AddUser(ctx context.Context, email, passwordHash string) (*directory.User, error)
		Get(ctx context.Context, id string) (*directory.User, error)
		Save(ctx context.Context, u *directory.User) error
	}

	// Auth registers users and keeps a single session id per user on
	// the user record itself. A new login replaces the previous session.
	Auth struct {
		users  Users
		hasher auth.PasswordHasher
	}
)

var (
	_ Users = (*directory.Directory)(nil)
	_ Users = (*directory.Cached)(nil)
)

func NewAuth(users Users, hasher auth.PasswordHasher) *Auth {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &Auth{users: users, hasher: hasher}
}

// RegisterUser creates a user, failing with UserExists when the email is taken.
func (a *Auth) RegisterUser(ctx context.Context, email, password string) (*directory.User, error) {
	if email == "" || password == "" {
		return nil, MissingCredentials{}
	}
	existing, err := a.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	} else if existing != nil {
		return nil, UserExists{Email: email}
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := a.users.AddUser(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user_id", u.ID).Msg("User registered")
	return u, nil
}

func (a *Auth) ValidLogin(ctx context.Context, email, password string) (bool, error) {
	u, err := a.findByEmail(ctx, email)
	if err != nil || u == nil {
		return false, err
	}
	return a.hasher.Verify(u.PasswordHash, password), nil
}

// CreateSession stores a new session id on the user, empty when the
// email is unknown.
func (a *Auth) CreateSession(ctx context.Context, email string) (string, error) {
	u, err := a.findByEmail(ctx, email)
	if err != nil || u == nil {
		return "", err
	}
	u.SessionID = uuid.NewString()
	if err := a.users.Save(ctx, u); err != nil {
		return "", fmt.Errorf("unable to store session for user %v, cause %w", u.ID, err)
	}
	return u.SessionID, nil
}

// GetUserFromSessionID returns nil when sessionID is empty or unknown.
func (a *Auth) GetUserFromSessionID(ctx context.Context, sessionID string) (*directory.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	return a.findBy(ctx, directory.Filter{SessionID: sessionID})
}

func (a *Auth) DestroySession(ctx context.Context, userID string) error {
	u, err := a.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	u.SessionID = ""
	return a.users.Save(ctx, u)
}

// GetResetPasswordToken issues a reset token, failing with UnknownEmail.
func (a *Auth) GetResetPasswordToken(ctx context.Context, email string) (string, error) {
	u, err := a.findByEmail(ctx, email)
	if err != nil {
		return "", err
	} else if u == nil {
		return "", UnknownEmail{Email: email}
	}
	u.ResetToken = uuid.NewString()
	if err := a.users.Save(ctx, u); err != nil {
		return "", fmt.Errorf("unable to store reset token for user %v, cause %w", u.ID, err)
	}
	return u.ResetToken, nil
}

// UpdatePassword replaces the password of the user holding resetToken and
// consumes the token.
func (a *Auth) UpdatePassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" {
		return InvalidResetToken{}
	}
	if password == "" {
		return MissingCredentials{}
	}
	u, err := a.findBy(ctx, directory.Filter{ResetToken: resetToken})
	if err != nil {
		return err
	} else if u == nil {
		return InvalidResetToken{}
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.ResetToken = ""
	if err := a.users.Save(ctx, u); err != nil {
		return fmt.Errorf("unable to update password for user %v, cause %w", u.ID, err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user_id", u.ID).Msg("Password updated")
	return nil
}

func (a *Auth) findByEmail(ctx context.Context, email string) (*directory.User, error) {
	if email == "" {
		return nil, nil
	}
	return a.findBy(ctx, directory.Filter{Email: email})
}

// findBy maps UserNotFound to nil.
func (a *Auth) findBy(ctx context.Context, f directory.Filter) (*directory.User, error) {
	u, err := a.users.FindUserBy(ctx, f)
	if directory.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return u, nil
}
