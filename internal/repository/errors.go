package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is wrapped when a unique constraint rejects a write.
	ErrConflict = errors.New("already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
