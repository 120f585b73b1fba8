// Package repository implements create/list/get/update/delete once, for
// every record type that has a surrogate id and one natural unique key.
//
// Uniqueness is not checked with a read before the write. The insert (or
// update) goes straight to the store and the store's UNIQUE constraint is
// the arbiter; its violation is translated into *storage.DuplicateError.
// Two concurrent creates for the same key therefore cannot both succeed.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-api/internal/storage"
)

// Record is what a row type must expose to be managed by a Repository.
type Record interface {
	GetID() int64
	SetID(id int64)
	NaturalKey() string
}

// Repository manages rows of E. P is *E and is inferred, so callers write
// repository.New[types.Student](handle, "estudiante").
type Repository[E any, P interface {
	*E
	Record
}] struct {
	handle *storage.Handle
	kind   string
}

// New returns a repository for E. kind names the entity in errors.
func New[E any, P interface {
	*E
	Record
}](handle *storage.Handle, kind string) *Repository[E, P] {
	return &Repository[E, P]{handle: handle, kind: kind}
}

// Create persists rec with a fresh id and returns the stored record.
func (r *Repository[E, P]) Create(ctx context.Context, rec E) (E, error) {
	P(&rec).SetID(0)

	err := r.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		if _, err := s.DB().NewInsert().Model(P(&rec)).Exec(ctx); err != nil {
			return r.writeErr("create", P(&rec), err)
		}
		return nil
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return rec, nil
}

// List returns every live row in insertion order. It never returns nil.
func (r *Repository[E, P]) List(ctx context.Context) ([]E, error) {
	out := make([]E, 0)

	err := r.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		if err := s.DB().NewSelect().Model(&out).Order("id").Scan(ctx); err != nil {
			return fmt.Errorf("%s list: %w", r.kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the row with the given id.
func (r *Repository[E, P]) Get(ctx context.Context, id int64) (E, error) {
	rec := new(E)
	P(rec).SetID(id)

	err := r.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		err := s.DB().NewSelect().Model(P(rec)).WherePK().Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return &storage.NotFoundError{Kind: r.kind, ID: id}
		}
		if err != nil {
			return fmt.Errorf("%s get: %w", r.kind, err)
		}
		return nil
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return *rec, nil
}

// Update replaces every field of the row with the given id, the natural key
// included. No separate uniqueness read is made: a key already held by
// another row is rejected by the store and reported as a DuplicateError.
func (r *Repository[E, P]) Update(ctx context.Context, id int64, rec E) (E, error) {
	P(&rec).SetID(id)

	err := r.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		res, err := s.DB().NewUpdate().Model(P(&rec)).WherePK().Exec(ctx)
		if err != nil {
			return r.writeErr("update", P(&rec), err)
		}
		return r.mustAffect(res, id)
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return rec, nil
}

// Delete removes the row with the given id permanently.
func (r *Repository[E, P]) Delete(ctx context.Context, id int64) error {
	rec := new(E)
	P(rec).SetID(id)

	return r.handle.WithSession(ctx, func(ctx context.Context, s *storage.Session) error {
		res, err := s.DB().NewDelete().Model(P(rec)).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("%s delete: %w", r.kind, err)
		}
		return r.mustAffect(res, id)
	})
}

func (r *Repository[E, P]) writeErr(op string, rec P, err error) error {
	if r.handle.IsUniqueViolation(err) {
		return &storage.DuplicateError{Kind: r.kind, Key: rec.NaturalKey()}
	}
	return fmt.Errorf("%s %s: %w", r.kind, op, err)
}

func (r *Repository[E, P]) mustAffect(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", r.kind, err)
	}
	if n == 0 {
		return &storage.NotFoundError{Kind: r.kind, ID: id}
	}
	return nil
}
