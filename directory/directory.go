package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// Directory keeps user records and persisted sessions in a sqlite database.
	Directory struct {
		db  *sql.DB
		now func() time.Time
	}

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		SessionID    string    `json:"-"`
		ResetToken   string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	// UserSession is the durable counterpart of an in-memory session.
	// A zero CreatedAt means the row carries no creation timestamp.
	UserSession struct {
		ID        string
		UserID    string
		SessionID string
		CreatedAt time.Time
	}

	// Filter selects users, every non-empty field must match.
	Filter struct {
		ID         string
		Email      string
		SessionID  string
		ResetToken string
	}
)

func openDirectoryDatabase(ctx context.Context, file string) (*sql.DB, error) {
	if dir := filepath.Dir(file); dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store users, cause %w", dir, err)
		}
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping directory %v, cause %v", file, err)
	}
	return conn, nil
}

// Open loads (or creates) the user directory stored at file.
func Open(ctx context.Context, file string) (*Directory, error) {
	conn, err := openDirectoryDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	d := &Directory{db: conn, now: time.Now}
	err = d.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init directory %v, cause %v", file, err)
	}
	return d, nil
}

func (d *Directory) Search(ctx context.Context, f Filter) ([]User, error) {
	where, args, err := f.where()
	if err != nil {
		return nil, err
	}
	return d.queryUsers(ctx, `select user_id, email, password_hash, session_id, reset_token, created_at, updated_at
	from users where `+where+` order by created_at asc, user_id asc`, args...)
}

// FindUserBy returns the first user matching f or UserNotFound.
func (d *Directory) FindUserBy(ctx context.Context, f Filter) (*User, error) {
	users, err := d.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, UserNotFound{ID: f.ID, Email: f.Email}
	}
	return &users[0], nil
}

func (d *Directory) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, UserNotFound{}
	}
	return d.FindUserBy(ctx, Filter{ID: id})
}

func (d *Directory) All(ctx context.Context) ([]User, error) {
	return d.queryUsers(ctx, `select user_id, email, password_hash, session_id, reset_token, created_at, updated_at
	from users order by created_at asc, user_id asc`)
}

func (d *Directory) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("unable to count users, cause %w", err)
	}
	return n, nil
}

// AddUser creates a new user with a fresh id.
func (d *Directory) AddUser(ctx context.Context, email, passwordHash string) (*User, error) {
	u := &User{Email: email, PasswordHash: passwordHash}
	if err := d.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Save inserts or updates u. Missing ids and timestamps are filled in place.
func (d *Directory) Save(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := d.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := d.db.ExecContext(ctx, `insert into users(user_id, email, email_hash64, password_hash, session_id, reset_token, created_at, updated_at)
	values (?, ?, ?, ?, ?, ?, ?, ?)
	on conflict (user_id) do update set
		email = excluded.email,
		email_hash64 = excluded.email_hash64,
		password_hash = excluded.password_hash,
		session_id = excluded.session_id,
		reset_token = excluded.reset_token,
		updated_at = excluded.updated_at`,
		u.ID, u.Email, emailHash(u.Email), u.PasswordHash, nullString(u.SessionID), nullString(u.ResetToken),
		u.CreatedAt.UnixNano(), u.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("unable to save user %v, cause %w", u.ID, err)
	}
	return nil
}

func (d *Directory) Remove(ctx context.Context, u *User) error {
	_, err := d.db.ExecContext(ctx, `delete from users where user_id = ?`, u.ID)
	if err != nil {
		return fmt.Errorf("unable to remove user %v, cause %w", u.ID, err)
	}
	return nil
}

func (d *Directory) SaveSession(ctx context.Context, s UserSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var createdAt sql.NullInt64
	if !s.CreatedAt.IsZero() {
		createdAt = sql.NullInt64{Int64: s.CreatedAt.UnixNano(), Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `insert into user_sessions(id, user_id, session_id, created_at) values (?, ?, ?, ?)`,
		s.ID, s.UserID, s.SessionID, createdAt)
	if err != nil {
		return fmt.Errorf("unable to save session for user %v, cause %w", s.UserID, err)
	}
	return nil
}

// SearchSessions returns the rows stored for sessionID, an empty slice when there are none.
func (d *Directory) SearchSessions(ctx context.Context, sessionID string) ([]UserSession, error) {
	rows, err := d.db.QueryContext(ctx, `select id, user_id, session_id, created_at from user_sessions where session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("unable to search sessions, cause %w", err)
	}
	defer rows.Close()
	out := []UserSession{}
	for rows.Next() {
		var s UserSession
		var createdAt sql.NullInt64
		err = rows.Scan(&s.ID, &s.UserID, &s.SessionID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan session, cause %w", err)
		}
		if createdAt.Valid {
			s.CreatedAt = time.Unix(0, createdAt.Int64).UTC()
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *Directory) RemoveSession(ctx context.Context, s UserSession) error {
	_, err := d.db.ExecContext(ctx, `delete from user_sessions where id = ?`, s.ID)
	if err != nil {
		return fmt.Errorf("unable to remove session %v, cause %w", s.ID, err)
	}
	return nil
}

func (d *Directory) queryUsers(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to query users, cause %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		var sessionID, resetToken sql.NullString
		var createdAt, updatedAt int64
		err = rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &sessionID, &resetToken, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user, cause %w", err)
		}
		u.SessionID = sessionID.String
		u.ResetToken = resetToken.String
		u.CreatedAt = time.Unix(0, createdAt).UTC()
		u.UpdatedAt = time.Unix(0, updatedAt).UTC()
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read users, cause %w", err)
	}
	return out, nil
}

func (f Filter) where() (string, []interface{}, error) {
	var clauses []string
	var args []interface{}
	if f.ID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.ID)
	}
	if f.Email != "" {
		clauses = append(clauses, "email_hash64 = ? and email = ?")
		args = append(args, emailHash(f.Email), f.Email)
	}
	if f.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.ResetToken != "" {
		clauses = append(clauses, "reset_token = ?")
		args = append(args, f.ResetToken)
	}
	if len(clauses) == 0 {
		return "", nil, InvalidFilter{}
	}
	return strings.Join(clauses, " and "), args, nil
}

func (d *Directory) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id text not null primary key,
			email text not null,
			email_hash64 integer not null,
			password_hash text not null,
			session_id text,
			reset_token text,
			created_at integer not null,
			updated_at integer not null
		)`,
		`create index if not exists idx_users_email_hash64
			on users(email_hash64)`,
		`create index if not exists idx_users_session_id
			on users(session_id)`,
		`create index if not exists idx_users_reset_token
			on users(reset_token)`,
		`create table if not exists user_sessions(
			id text not null primary key,
			user_id text not null,
			session_id text not null unique,
			created_at integer
		)`,
	} {
		_, err := d.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Directory) Close() error {
	return d.db.Close()
}

func emailHash(email string) int64 {
	return int64(xxhash.Sum64String(email))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IsNotFound reports whether err means the requested user does not exist.
func IsNotFound(err error) bool {
	var nf UserNotFound
	return errors.As(err, &nf)
}
