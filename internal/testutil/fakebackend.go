// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/service"
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// It holds accounts for multiple users and keeps each user's tasks isolated.
type FakeBackend struct {
	mu        sync.RWMutex
	users     map[string]*fakeUser // keyed by lowercase email
	tasks     map[string][]service.Task
	current   *service.User
	listeners []func(*service.Session, *service.User)
	recovery  map[string]*recoveryToken

	// Error injection for testing
	RestoreSessionErr error
	SignInErr         error
	ResolveEmailErr   error
	SignUpErr         error
	SignOutErr        error
	ResetRequestErr   error
	VerifyRecoveryErr error
	UpdatePasswordErr error
	ListTasksErr      error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error

	// PendingVerification makes SignUp report that email confirmation is
	// required instead of starting a session.
	PendingVerification bool
}

type fakeUser struct {
	user     service.User
	password string
}

type recoveryToken struct {
	userID  string
	expired bool
	used    bool
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:    make(map[string]*fakeUser),
		tasks:    make(map[string][]service.Task),
		recovery: make(map[string]*recoveryToken),
	}
}

// AddUser registers an account and returns its id.
func (f *FakeBackend) AddUser(email, password, username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.users[strings.ToLower(email)] = &fakeUser{
		user:     service.User{ID: id, Email: email, Username: username},
		password: password,
	}
	return id
}

// AddTask inserts a task owned by the given user, newest first.
func (f *FakeBackend) AddTask(userID, title string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UserID:    userID,
	}
	f.tasks[userID] = append([]service.Task{task}, f.tasks[userID]...)
	return task
}

// SetCurrent makes the given user the authenticated one, as if a stored
// session for that user existed.
func (f *FakeBackend) SetCurrent(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[strings.ToLower(email)]; ok {
		usr := u.user
		f.current = &usr
	}
}

// AddRecoveryToken registers a password-reset token for a user.
func (f *FakeBackend) AddRecoveryToken(token, userID string, expired bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recovery[token] = &recoveryToken{userID: userID, expired: expired}
}

// FireSessionChange invokes session-change listeners as the real client does
// when a token refresh rotates or drops the session.
func (f *FakeBackend) FireSessionChange(sess *service.Session, user *service.User) {
	f.mu.RLock()
	listeners := make([]func(*service.Session, *service.User), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.RUnlock()
	for _, fn := range listeners {
		fn(sess, user)
	}
}

// RestoreSession implements service.Auth.
func (f *FakeBackend) RestoreSession(ctx context.Context) (*service.User, error) {
	if f.RestoreSessionErr != nil {
		return nil, f.RestoreSessionErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return nil, service.ErrUnauthenticated
	}
	usr := *f.current
	return &usr, nil
}

// SignIn implements service.Auth.
func (f *FakeBackend) SignIn(ctx context.Context, email, password string) (*service.User, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok || u.password != password {
		return nil, service.ErrInvalidCredentials
	}
	usr := u.user
	f.current = &usr
	return &usr, nil
}

// ResolveEmail implements service.Auth.
func (f *FakeBackend) ResolveEmail(ctx context.Context, username string) (string, error) {
	if f.ResolveEmailErr != nil {
		return "", f.ResolveEmailErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	want := strings.ToLower(strings.TrimSpace(username))
	for _, u := range f.users {
		if strings.ToLower(u.user.Username) == want {
			return u.user.Email, nil
		}
	}
	return "", fmt.Errorf("%w: unknown username", service.ErrInvalidCredentials)
}

// SignUp implements service.Auth.
func (f *FakeBackend) SignUp(ctx context.Context, email, password, username string) (service.SignupResult, error) {
	if f.SignUpErr != nil {
		return service.SignupResult{}, f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := f.users[key]; exists {
		return service.SignupResult{}, fmt.Errorf("%w: account already exists", service.ErrRegistration)
	}
	u := &fakeUser{
		user:     service.User{ID: uuid.NewString(), Email: email, Username: username},
		password: password,
	}
	f.users[key] = u
	usr := u.user
	if f.PendingVerification {
		return service.SignupResult{User: &usr, PendingVerification: true}, nil
	}
	f.current = &usr
	signedUp := usr
	return service.SignupResult{User: &signedUp}, nil
}

// SignOut implements service.Auth.
func (f *FakeBackend) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
	f.FireSessionChange(nil, nil)
	return nil
}

// RequestPasswordReset implements service.Auth.
func (f *FakeBackend) RequestPasswordReset(ctx context.Context, email string) error {
	return f.ResetRequestErr
}

// VerifyRecovery implements service.Auth.
func (f *FakeBackend) VerifyRecovery(ctx context.Context, token string) (string, error) {
	if f.VerifyRecoveryErr != nil {
		return "", f.VerifyRecoveryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recovery[token]
	if !ok || rec.expired || rec.used {
		return "", service.ErrLinkInvalid
	}
	rec.used = true
	return "scoped-" + rec.userID, nil
}

// UpdatePassword implements service.Auth.
func (f *FakeBackend) UpdatePassword(ctx context.Context, scopedToken, newPassword string) error {
	if f.UpdatePasswordErr != nil {
		return f.UpdatePasswordErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := strings.CutPrefix(scopedToken, "scoped-")
	if !ok {
		return service.ErrLinkInvalid
	}
	for _, u := range f.users {
		if u.user.ID == userID {
			u.password = newPassword
			return nil
		}
	}
	return service.ErrLinkInvalid
}

// SignOutScoped implements service.Auth.
func (f *FakeBackend) SignOutScoped(ctx context.Context, scopedToken string) error {
	return nil
}

// OnSessionChange implements service.Auth.
func (f *FakeBackend) OnSessionChange(fn func(*service.Session, *service.User)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// ListTasks implements service.Tasks.
func (f *FakeBackend) ListTasks(ctx context.Context) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return nil, service.ErrUnauthenticated
	}
	items := f.tasks[f.current.ID]
	result := make([]service.Task, len(items))
	copy(result, items)
	return result, nil
}

// CreateTask implements service.Tasks.
func (f *FakeBackend) CreateTask(ctx context.Context, title, description string, status service.Status) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return service.Task{}, service.ErrUnauthenticated
	}
	task := service.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UserID:      f.current.ID,
	}
	f.tasks[f.current.ID] = append([]service.Task{task}, f.tasks[f.current.ID]...)
	return task, nil
}

// UpdateTask implements service.Tasks.
func (f *FakeBackend) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return service.Task{}, service.ErrUnauthenticated
	}
	items := f.tasks[f.current.ID]
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if patch.Title != nil {
			items[i].Title = *patch.Title
		}
		if patch.Description != nil {
			items[i].Description = *patch.Description
		}
		if patch.Status != nil {
			items[i].Status = *patch.Status
		}
		return items[i], nil
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Tasks.
func (f *FakeBackend) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return service.ErrUnauthenticated
	}
	items := f.tasks[f.current.ID]
	for i := range items {
		if items[i].ID == id {
			f.tasks[f.current.ID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}
