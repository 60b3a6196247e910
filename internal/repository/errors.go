// Package repository holds the MySQL data access for the booking
// service.  Sentinel errors defined here let handlers distinguish
// failure scenarios without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned by single-row lookups when no row matches.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller asks for a record owned by
// another account, such as somebody else's ticket.  Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// notFound maps sql.ErrNoRows to ErrNotFound and passes everything
// else through unchanged.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
