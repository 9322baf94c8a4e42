// Package session holds the process-wide source of truth for "who is logged
// in". The store observes backend session changes and republishes them to
// its own subscribers as immutable snapshots.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"

	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

// ResetConfirmation is the fixed message returned for every accepted
// password-reset request. It is identical for registered and unknown
// addresses so the store never leaks which emails exist.
const ResetConfirmation = "Password reset email sent! Check your inbox."

var fieldValidator = validator.New()

// Snapshot is an immutable view of the store handed to readers and
// subscribers.
type Snapshot struct {
	// User is the currently authenticated user, nil when logged out.
	User *service.User

	// Authenticated reports whether a user is present.
	Authenticated bool

	// Diagnostic is the last auth failure recorded by the store, for
	// display only.
	Diagnostic string
}

// Store tracks the current user. Concurrent operations are not coordinated
// beyond the mutex: the most recent state-setting event wins, whether it came
// from a user call or a backend notification.
type Store struct {
	backend service.Auth

	mu         sync.RWMutex
	user       *service.User
	diagnostic string
	nextSubID  int
	subs       map[int]func(Snapshot)
}

// New creates a Store over the given auth backend.
func New(backend service.Auth) *Store {
	return &Store{
		backend: backend,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Initialize restores any existing session and registers the persistent
// subscription to backend session changes. A missing or dead session is not
// an error: the store simply starts logged out with a diagnostic recorded.
func (s *Store) Initialize(ctx context.Context) Snapshot {
	s.backend.OnSessionChange(func(_ *service.Session, usr *service.User) {
		// Unsolicited backend events (refresh, expiry, sign-out
		// elsewhere) overwrite the current user unconditionally.
		s.setUser(usr, "")
	})

	usr, err := s.backend.RestoreSession(ctx)
	if err != nil {
		s.setUser(nil, fmt.Sprintf("session restore failed: %v", err))
		return s.Snapshot()
	}

	s.setUser(usr, "")
	return s.Snapshot()
}

// Login authenticates with an email or username plus password. On backend
// rejection the current user stays absent and ErrInvalidCredentials is
// returned.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return fmt.Errorf("%w: identifier and password are required", service.ErrValidation)
	}

	email := identifier
	if !strings.Contains(identifier, "@") {
		resolved, err := s.backend.ResolveEmail(ctx, identifier)
		if err != nil {
			s.recordDiagnostic("login failed")
			return service.ErrInvalidCredentials
		}
		email = resolved
	}

	usr, err := s.backend.SignIn(ctx, email, secret)
	if err != nil {
		s.recordDiagnostic("login failed")
		return err
	}

	s.setUser(usr, "")
	return nil
}

// Signup registers a new account. The result reports whether the user was
// authenticated immediately or left pending email verification.
func (s *Store) Signup(ctx context.Context, email, secret, username string) (service.SignupResult, error) {
	if err := fieldValidator.Var(email, "required,email"); err != nil {
		return service.SignupResult{}, fmt.Errorf("%w: a valid email address is required", service.ErrValidation)
	}
	if secret == "" {
		return service.SignupResult{}, fmt.Errorf("%w: a password is required", service.ErrValidation)
	}

	result, err := s.backend.SignUp(ctx, email, secret, username)
	if err != nil {
		return service.SignupResult{}, err
	}

	if !result.PendingVerification {
		s.setUser(result.User, "")
	}
	return result, nil
}

// Logout invalidates the backend session and clears the current user.
// If the backend call fails the local state is left unchanged.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.backend.SignOut(ctx); err != nil {
		return err
	}

	s.setUser(nil, "")
	return nil
}

// RequestPasswordReset asks the backend to send a reset email and returns
// the fixed confirmation message. All backend failures surface as the single
// ErrResetRequest case.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := fieldValidator.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: a valid email address is required", service.ErrValidation)
	}

	if err := s.backend.RequestPasswordReset(ctx, email); err != nil {
		return "", service.ErrResetRequest
	}

	return ResetConfirmation, nil
}

// Subscribe registers a listener called with a snapshot after every state
// change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state as a value copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Authenticated: s.user != nil,
		Diagnostic:    s.diagnostic,
	}
	if s.user != nil {
		usr := *s.user
		snap.User = &usr
	}
	return snap
}

// setUser overwrites the current user and notifies subscribers.
// Listeners run outside the lock; a slow listener cannot stall the store.
func (s *Store) setUser(usr *service.User, diagnostic string) {
	s.mu.Lock()
	s.user = usr
	s.diagnostic = diagnostic
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	logger.Log.Debugw("session state changed", "authenticated", snap.Authenticated)

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) recordDiagnostic(diagnostic string) {
	s.mu.Lock()
	s.diagnostic = diagnostic
	s.mu.Unlock()
}
