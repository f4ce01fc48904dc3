package auth

import (
	"errors"
	"fmt"
)

// Reasons a request is not admitted by the gate.
//
// Clients never see them: every rejection is reported as unauthorized.
var (
	// ErrNotAuthenticated is returned when the request carries no usable credential.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionUnknown is returned when the presented refresh index is not found in the store.
	ErrSessionUnknown = errors.New("session unknown")

	// ErrSessionRevoked is returned when a refresh record was found but its token failed validation.
	// The record is deleted before this error is reported.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrStoreUnavailable is returned when the refresh store could not be reached.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
)

// ErrInvalidToken is returned by token verifiers for any token that should not be trusted.
//
// Verifiers MUST NOT tell apart signature, structure and expiry failures.
var ErrInvalidToken = errors.New("invalid token")

// StoreError wraps err with ErrStoreUnavailable unless it already is one.
func StoreError(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
