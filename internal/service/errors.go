package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
)

// storageErr marks err as a persistence failure while keeping the cause
// inspectable.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", bracket.ErrPersistence, op, err)
}

// lookupErr turns a missing row into notFound.
func lookupErr(op string, err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return storageErr(op, err)
}
