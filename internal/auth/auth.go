// Package auth manages user credentials: registration, login verification
// and account deletion. Login is a pure read; there is no session, token,
// lockout or retry state.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

const userKind = "usuario"

// ErrAuth matches every *AuthError.
var ErrAuth = errors.New("authentication failed")

// Reason tells apart why a login was rejected. It is meant for logs only;
// clients get the same answer for both so usernames cannot be enumerated.
type Reason string

const (
	ReasonNotFound       Reason = "not found"
	ReasonBadCredentials Reason = "bad credentials"
)

// AuthError is returned by Login when the identity is unknown or the
// password does not match.
type AuthError struct {
	Reason Reason
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// Authenticator is the credential store.
type Authenticator struct {
	handle *storage.Handle
	log    *slog.Logger
}

// New returns an Authenticator backed by handle. A nil logger falls back
// to slog.Default().
func New(handle *storage.Handle, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{handle: handle, log: log}
}

// Register stores a new user with the hash of password. It fails with a
// *storage.DuplicateError when the username or the email is already taken.
func (a *Authenticator) Register(ctx context.Context, username, email, password string) (types.User, error) {
	user := types.User{
		Username:     username,
		Email:        email,
		PasswordHash: HashPassword(password),
	}

	err := a.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		if _, err := s.DB().NewInsert().Model(&user).Exec(ctx); err != nil {
			if a.handle.IsUniqueViolation(err) {
				return &storage.DuplicateError{Kind: userKind, Key: takenKey(err, username, email)}
			}
			return fmt.Errorf("register: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}

	a.log.Info("user registered", slog.Int64("id", user.ID), slog.String("username", username))
	return user, nil
}

// Login checks username and password against the stored hash.
func (a *Authenticator) Login(ctx context.Context, username, password string) error {
	var user types.User

	err := a.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		err := s.DB().NewSelect().
			Model(&user).
			Where("username = ?", username).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return &AuthError{Reason: ReasonNotFound}
		}
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return &AuthError{Reason: ReasonBadCredentials}
	}
	return nil
}

// DeleteAccount removes the user with the given id permanently.
func (a *Authenticator) DeleteAccount(ctx context.Context, id int64) error {
	return a.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		res, err := s.DB().NewDelete().
			Model((*types.User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete account: rows affected: %w", err)
		}
		if n == 0 {
			return &storage.NotFoundError{Kind: userKind, ID: id}
		}
		return nil
	})
}

// takenKey picks the value that collided. SQLite names the column in the
// message, e.g. "UNIQUE constraint failed: usuarios.email".
func takenKey(err error, username, email string) string {
	if strings.Contains(err.Error(), "usuarios.email") {
		return email
	}
	return username
}
