package domain

import "errors"

// Error taxonomy. Services wrap these with a human-readable reason
// (fmt.Errorf("%w: ...", ErrValidation)) and callers match with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrState         = errors.New("invalid state")
	ErrStorage       = errors.New("storage failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session is no longer valid")
)
