// Package service defines the backend-agnostic types and interfaces for
// authentication and task operations.
package service

import "time"

// Status is the lifecycle state of a task.
type Status string

// The three task statuses understood by the backend.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Field limits enforced locally before any network call.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// User is the identity issued by the backend. The client only ever holds a
// read-only cached copy derived from the current session.
type User struct {
	ID       string
	Email    string
	Username string
}

// Session is the backend-issued credential pair authorizing requests as a
// given user. It is opaque to the application; the backend rotates it and
// the client only observes it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Task represents a single to-do item.
// ID, CreatedAt and UserID are server-assigned and never settable by the client.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
}

// TaskPatch carries only the fields of a task update that actually changed.
// Nil fields are omitted from the request.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
}

// Empty reports whether the patch would send nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// SignupResult reports the outcome of a registration attempt. Depending on
// backend configuration the new user is either authenticated immediately or
// left pending email verification.
type SignupResult struct {
	User                *User
	PendingVerification bool
}
