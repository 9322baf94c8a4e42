// Package resetflow implements the password-reset completion flow entered
// from an emailed recovery link. The flow is a small state machine: the
// recovery token must be exchanged for a scoped session before a new
// password may be submitted, and the scoped session is terminated the moment
// the change succeeds so the one-time token cannot be reused.
package resetflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

// State of the flow.
type State int

const (
	// StateValidating is the entry state, before the link was checked.
	StateValidating State = iota

	// StateLinkValid means the recovery token was exchanged for a scoped
	// session and a new password may be submitted.
	StateLinkValid

	// StateLinkInvalid means the token was expired, malformed or reused.
	// Terminal: the password form is never reachable from here.
	StateLinkInvalid

	// StateSubmitting means a credential update is in flight.
	StateSubmitting

	// StateSucceeded means the password was changed and the scoped
	// session terminated.
	StateSucceeded

	// StateFailed means the backend rejected the update; submitting again
	// is allowed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateLinkValid:
		return "link_valid"
	case StateLinkInvalid:
		return "link_invalid"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	// MinPasswordLen is the local minimum for a new password.
	MinPasswordLen = 8

	// RedirectDelay is how long the caller should display the success
	// message before returning to the login entry point.
	RedirectDelay = 2 * time.Second
)

// Flow drives one password-reset completion.
type Flow struct {
	backend service.Auth

	mu          sync.Mutex
	state       State
	scopedToken string
	message     string
}

// New creates a flow in StateValidating.
func New(backend service.Auth) *Flow {
	return &Flow{backend: backend, state: StateValidating}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message returns the last user-facing message recorded by the flow.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Begin exchanges the recovery token for a scoped session. Any failure moves
// the flow to StateLinkInvalid; the password form must never be shown then.
func (f *Flow) Begin(ctx context.Context, recoveryToken string) State {
	scoped, err := f.backend.VerifyRecovery(ctx, recoveryToken)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateValidating {
		return f.state
	}

	if err != nil {
		f.state = StateLinkInvalid
		f.message = "Invalid or expired reset link. Please request a new one."
		return f.state
	}

	f.state = StateLinkValid
	f.scopedToken = scoped
	return f.state
}

// Submit validates and applies a new password. Local rejections return
// ErrValidation without touching the network. Allowed only from
// StateLinkValid or StateFailed (retry).
func (f *Flow) Submit(ctx context.Context, newPassword, confirm string) error {
	f.mu.Lock()
	switch f.state {
	case StateLinkValid, StateFailed:
		// proceed
	default:
		state := f.state
		f.mu.Unlock()
		return fmt.Errorf("%w: cannot submit a password while %s", service.ErrLinkInvalid, state)
	}

	if err := validatePassword(newPassword, confirm); err != nil {
		f.mu.Unlock()
		return err
	}

	f.state = StateSubmitting
	scoped := f.scopedToken
	f.mu.Unlock()

	if err := f.backend.UpdatePassword(ctx, scoped, newPassword); err != nil {
		f.mu.Lock()
		f.state = StateFailed
		f.message = fmt.Sprintf("Failed to reset password: %v", err)
		f.mu.Unlock()
		return err
	}

	// The update succeeded; terminate the scoped session right away so the
	// one-time token behind it is dead even if the call below fails.
	if err := f.backend.SignOutScoped(ctx, scoped); err != nil {
		logger.Log.Debugw("scoped session sign-out failed", "error", err)
	}

	f.mu.Lock()
	f.state = StateSucceeded
	f.scopedToken = ""
	f.message = "Password reset successfully! Redirecting to login..."
	f.mu.Unlock()

	return nil
}

func validatePassword(newPassword, confirm string) error {
	if newPassword == "" || confirm == "" {
		return fmt.Errorf("%w: please fill in all fields", service.ErrValidation)
	}
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", service.ErrValidation)
	}
	if len(newPassword) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", service.ErrValidation, MinPasswordLen)
	}
	return nil
}
