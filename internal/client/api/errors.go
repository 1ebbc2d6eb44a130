package api

import "errors"

var (
	// ErrAuthentication: credential sign-in rejected by the backend.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRegistration: sign-up rejected (duplicate email, weak password, ...).
	ErrRegistration = errors.New("registration failed")

	// ErrSignOut: the backend sign-out call failed; local state is kept.
	ErrSignOut = errors.New("sign out failed")

	// ErrProfileNotFound: the profiles lookup found no row. A well-defined
	// condition, distinct from transport or server failures.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnauthorized: no usable session (missing, invalid, or unrefreshable).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable: the backend could not be reached.
	ErrUnavailable = errors.New("server unavailable")
)
