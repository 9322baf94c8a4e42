package service

import "errors"

// Error taxonomy for the whole client. Backend {data, error} responses are
// mapped onto these at the gateway boundary; nothing downstream inspects raw
// responses. Local validation errors never reach the network.
var (
	// ErrValidation is returned for input rejected locally, before any
	// network call (empty or over-long fields, mismatched passwords).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned when the backend rejects an
	// identifier/secret pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when no session is available or the
	// session can no longer be refreshed.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrRegistration is returned when signup fails (for example a
	// duplicate email); the backend message is surfaced verbatim.
	ErrRegistration = errors.New("registration failed")

	// ErrSignOut is returned when the backend sign-out call fails; local
	// session state is left unchanged in that case.
	ErrSignOut = errors.New("sign out failed")

	// ErrResetRequest covers every failure of a password-reset email
	// request. It is deliberately a single case so the caller can never
	// distinguish an unknown address from a backend fault.
	ErrResetRequest = errors.New("password reset request failed")

	// ErrLinkInvalid is returned when a recovery token is missing, expired,
	// malformed or already used.
	ErrLinkInvalid = errors.New("reset link is invalid or expired")

	// ErrNotFound is returned when a task id matches no row owned by the
	// current user. A foreign user's row is indistinguishable from a
	// missing one.
	ErrNotFound = errors.New("task not found")

	// ErrBackend wraps any other backend or network failure.
	ErrBackend = errors.New("backend error")
)
