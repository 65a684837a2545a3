package services

import "errors"

// Client-facing error kinds. Handlers translate these to transport status
// codes; anything else is treated as an infrastructure failure.
var (
	ErrValidation         = errors.New("validation failed")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUpdate      = errors.New("invalid update")
	ErrNotFound           = errors.New("user not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
)
