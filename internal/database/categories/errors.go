package categories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound            = errors.New("category not found")
	ErrDuplicateName       = errors.New("category name already exists")
	ErrInvalidName         = errors.New("category name must be 1-20 characters")
	ErrInvalidPosition     = errors.New("invalid category position")
	ErrConstraintViolation = errors.New("category position conflict")
)

// ConstraintViolationError reports a position already held by another
// category of the same owner. It matches ErrConstraintViolation with errors.Is.
type ConstraintViolationError struct {
	Owner    uint
	Position int
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: user %d already has a category at position %d",
		ErrConstraintViolation, e.Owner, e.Position)
}

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

type uniqueIndex int

const (
	uniqueNone uniqueIndex = iota
	uniqueName
	uniquePosition
)

// violatedIndex reports which per-owner unique index rejected a write.
// SQLite names the columns of the failed index in the message, e.g.
// "UNIQUE constraint failed: categories.user_id, categories.position".
func violatedIndex(err error) uniqueIndex {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return uniqueNone
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "categories.position"):
		return uniquePosition
	case strings.Contains(msg, "categories.name"):
		return uniqueName
	}
	return uniqueNone
}

// translateWriteError maps storage-level uniqueness failures for a category
// write onto the package error kinds.
func translateWriteError(err error, owner uint, name string, position int) error {
	if err == nil {
		return nil
	}

	switch violatedIndex(err) {
	case uniqueName:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case uniquePosition:
		return &ConstraintViolationError{Owner: owner, Position: position}
	}
	return err
}
