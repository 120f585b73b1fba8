// Package storage owns access to the persistent store.
//
// A Handle is constructed once at startup by an engine package (see
// storage/sqlite) and passed explicitly to every repository. Callers never
// touch the connection pool directly: each operation runs inside exactly one
// Session, which wraps a single transaction and is always released, whether
// the operation succeeds, returns a typed failure, panics, or has its
// context cancelled.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// UniqueViolationFunc reports whether err is the engine's signal for a
// broken UNIQUE constraint. Each engine knows its own error shape.
type UniqueViolationFunc func(err error) bool

// Handle is the single entry point to the persistent store.
// It is safe for concurrent use: every call opens its own Session.
type Handle struct {
	db       *bun.DB
	isUnique UniqueViolationFunc
}

// NewHandle wraps an opened bun.DB. isUnique may be nil, in which case no
// error is ever classified as a unique violation.
func NewHandle(db *bun.DB, isUnique UniqueViolationFunc) *Handle {
	if isUnique == nil {
		isUnique = func(error) bool { return false }
	}
	return &Handle{db: db, isUnique: isUnique}
}

// Session is a scoped, single-use handle bounding one logical transaction.
type Session struct {
	tx   bun.Tx
	done bool
}

// OpenSession begins a new transaction bound to ctx. The caller must call
// Close (normally deferred) and Commit on the success path.
func (h *Handle) OpenSession(ctx context.Context) (*Session, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open session: %w", err)
	}
	return &Session{tx: tx}, nil
}

// DB returns the query interface of the session's transaction.
func (s *Session) DB() bun.IDB {
	return s.tx
}

// Commit makes the session's writes visible to other sessions.
// A session can be committed at most once.
func (s *Session) Commit() error {
	if s.done {
		return ErrSessionDone
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Close releases the session. An uncommitted transaction is rolled back.
// Close is idempotent, so it is always safe to defer.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	// database/sql already rolled back if the context was cancelled.
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("storage: rollback: %w", err)
	}
	return nil
}

// WithSession runs fn inside a fresh session. The session is committed only
// when fn returns nil; on an error, a panic, or a cancelled context it is
// rolled back. Either way it is released before WithSession returns.
func (h *Handle) WithSession(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	s, err := h.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(ctx, s); err != nil {
		return err
	}
	return s.Commit()
}

// IsUniqueViolation reports whether err was produced by a UNIQUE constraint.
func (h *Handle) IsUniqueViolation(err error) bool {
	return err != nil && h.isUnique(err)
}

// Ping checks that the store is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (h *Handle) Close() error {
	return h.db.Close()
}
