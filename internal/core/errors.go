package core

import (
	"errors"
	"fmt"
)

// Error categories. Every error surfaced by a service wraps exactly one of
// these, so callers can classify with errors.Is without knowing the
// specific failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Specific failures, each tied to its category.
var (
	ErrInvalidReference  = fmt.Errorf("%w: invalid reference id", ErrValidation)
	ErrReferenceNotOwned = fmt.Errorf("%w: reference not owned by caller", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription  = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptyName         = fmt.Errorf("%w: empty name", ErrValidation)
	ErrAccountExists     = fmt.Errorf("%w: username or email already exists", ErrConflict)
	ErrBadCredentials    = fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	ErrInvalidToken      = fmt.Errorf("%w: invalid token", ErrUnauthorized)
)
