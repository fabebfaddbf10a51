package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used as marks. Callers build errors with NewError/WithError
// and Mark them with one of these so handlers can map them to a status code.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrConflict         = errors.New("conflict")
	ErrAuthentication   = errors.New("authentication failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUpstream         = errors.New("upstream provider error")
	ErrDatabase         = errors.New("database error")
	ErrInternal         = errors.New("internal error")
	ErrSystem           = errors.New("system error")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict reports a request that is well formed but contradicts stored or
// provider state, e.g. a fixed-amount discount in another currency.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) || errors.Is(err, ErrSystem)
}

// Is, As and Unwrap are re-exported so callers don't need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
