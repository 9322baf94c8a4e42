package service

import "context"

// Auth defines the authentication operations of the hosted backend.
// All auth calls go through this interface; the session store and the
// reset flow never import the vendor client directly.
type Auth interface {
	// RestoreSession loads a previously persisted session and returns the
	// user it belongs to. Returns ErrUnauthenticated when no usable
	// session exists.
	RestoreSession(ctx context.Context) (*User, error)

	// SignIn exchanges an email/password pair for a session.
	SignIn(ctx context.Context, email, password string) (*User, error)

	// ResolveEmail maps a username to the email it was registered with.
	ResolveEmail(ctx context.Context, username string) (string, error)

	// SignUp registers a new account. The optional username is stored as
	// profile metadata.
	SignUp(ctx context.Context, email, password, username string) (SignupResult, error)

	// SignOut invalidates the current session on the backend and discards
	// it locally. Local state is untouched if the backend call fails.
	SignOut(ctx context.Context) error

	// RequestPasswordReset asks the backend to email a reset link for the
	// address. The response never reveals whether the address is known.
	RequestPasswordReset(ctx context.Context, email string) error

	// VerifyRecovery exchanges a one-time recovery token for a short-lived
	// session scoped to a password change. The scoped session is never
	// adopted as the current session.
	VerifyRecovery(ctx context.Context, token string) (scopedToken string, err error)

	// UpdatePassword changes the credential using a scoped session.
	UpdatePassword(ctx context.Context, scopedToken, newPassword string) error

	// SignOutScoped terminates a scoped session so the one-time token
	// behind it cannot be reused.
	SignOutScoped(ctx context.Context, scopedToken string) error

	// OnSessionChange registers a callback fired whenever the backend
	// reports a session change: token refresh, sign-out, expiry. A nil
	// user means the session ended.
	OnSessionChange(fn func(*Session, *User))
}

// Tasks defines the row-scoped task operations. Every call is filtered by
// id AND owner on the server; a locally held id never authorizes anything.
type Tasks interface {
	// ListTasks returns every task of the current user, newest first.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask inserts a task; the server assigns id, created_at and
	// owner and returns the stored row.
	CreateTask(ctx context.Context, title, description string, status Status) (Task, error)

	// UpdateTask applies a partial update and returns the stored row.
	// Returns ErrNotFound when the id matches no row of the current user.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask removes a task. Returns ErrNotFound when the id matches
	// no row of the current user.
	DeleteTask(ctx context.Context, id string) error
}

// Backend is the full contract of the hosted service.
type Backend interface {
	Auth
	Tasks
}
