package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate matches every *DuplicateError.
	ErrDuplicate = errors.New("record already exists")
	// ErrSessionDone is returned when committing a session twice.
	ErrSessionDone = errors.New("storage: session already finished")
)

// NotFoundError means no live row of Kind has the given ID.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError means a live row of Kind already holds the natural key Key.
type DuplicateError struct {
	Kind string
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }
