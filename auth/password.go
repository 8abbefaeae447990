package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type (
	// PasswordHasher produces salted one-way digests. Verify never fails
	// loudly: a malformed digest simply does not match.
	PasswordHasher interface {
		Hash(password string) (string, error)
		Verify(hash, password string) bool
	}

	BcryptHasher struct {
		Cost int
	}

	// PasswordTooLong is returned by hashers that cannot digest passwords
	// longer than Limit bytes.
	PasswordTooLong struct {
		Limit int
	}

	// Argon2idHasher encodes digests in the PHC string format:
	// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
	Argon2idHasher struct {
		Time    uint32
		Memory  uint32
		Threads uint8
	}
)

const (
	bcryptMaxPassword = 72

	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// NewHasher returns the hasher registered under name ("" means bcrypt).
func NewHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case "argon2id":
		return DefaultArgon2id(), nil
	}
	return nil, fmt.Errorf("auth: unknown password hasher %q", name)
}

func DefaultArgon2id() Argon2idHasher {
	return Argon2idHasher{Time: 1, Memory: 64 * 1024, Threads: 4}
}

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	buf, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", PasswordTooLong{Limit: bcryptMaxPassword}
	} else if err != nil {
		return "", fmt.Errorf("unable to hash password, cause %w", err)
	}
	return string(buf), nil
}

func (b BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (a Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, a.Time, a.Memory, a.Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Time, a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (a Argon2idHasher) Verify(hash, password string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil || time == 0 || threads == 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}
	actual := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func (p PasswordTooLong) Error() string {
	return fmt.Sprintf("password must not exceed %v bytes", p.Limit)
}
