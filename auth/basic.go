package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/andrebq/authbox/directory"
)

type (
	Credential struct {
		Email    string
		Password string
	}

	// BasicAuth authenticates every request from its Authorization header.
	BasicAuth struct {
		Auth
		users  UserFinder
		hasher PasswordHasher
	}
)

const basicPrefix = "Basic "

func NewBasicAuth(base Auth, users UserFinder, hasher PasswordHasher) *BasicAuth {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &BasicAuth{Auth: base, users: users, hasher: hasher}
}

// ExtractBase64AuthorizationHeader returns what follows "Basic " in header.
func ExtractBase64AuthorizationHeader(header string) string {
	if !strings.HasPrefix(header, basicPrefix) {
		return ""
	}
	return header[len(basicPrefix):]
}

// DecodeBase64AuthorizationHeader decodes token, any malformed input
// yields an empty string.
func DecodeBase64AuthorizationHeader(token string) string {
	if token == "" {
		return ""
	}
	buf, err := base64.StdEncoding.DecodeString(token)
	if err != nil || !utf8.Valid(buf) {
		return ""
	}
	return string(buf)
}

// ExtractUserCredentials splits decoded on its first ':', the password
// may contain more of them.
func ExtractUserCredentials(decoded string) (Credential, bool) {
	idx := strings.IndexByte(decoded, ':')
	if idx < 0 {
		return Credential{}, false
	}
	return Credential{Email: decoded[:idx], Password: decoded[idx+1:]}, true
}

// UserObjectFromCredentials returns the first user with the given email
// whose password matches.
func (b *BasicAuth) UserObjectFromCredentials(ctx context.Context, c Credential) (*directory.User, error) {
	if c.Email == "" {
		return nil, nil
	}
	candidates, err := b.users.Search(ctx, directory.Filter{Email: c.Email})
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if b.hasher.Verify(candidates[i].PasswordHash, c.Password) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (b *BasicAuth) CurrentUser(r *http.Request) (*directory.User, error) {
	token := ExtractBase64AuthorizationHeader(b.AuthorizationHeader(r))
	if token == "" {
		return nil, nil
	}
	decoded := DecodeBase64AuthorizationHeader(token)
	if decoded == "" {
		return nil, nil
	}
	cred, ok := ExtractUserCredentials(decoded)
	if !ok {
		return nil, nil
	}
	return b.UserObjectFromCredentials(r.Context(), cred)
}
