// Package errs holds the domain error taxonomy. Handlers translate these
// sentinels to HTTP statuses; nothing else about a failure crosses the
// gateway boundary.
package errs

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
