// Package tasks owns the in-memory working set of the current user's tasks
// and keeps it consistent with the remote store after every mutation.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/thoas/go-funk"

	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

// Controller synchronizes the user-scoped task collection with the backend.
// The collection is the only in-memory copy: refreshed wholesale on LoadAll,
// patched element-wise on each successful mutation, never partially stale.
type Controller struct {
	backend service.Tasks

	mu      sync.RWMutex
	items   []service.Task
	loadErr string
	closed  bool
}

// New creates a controller over the given task backend.
func New(backend service.Tasks) *Controller {
	return &Controller{backend: backend}
}

// LoadAll fetches every task of the current user, newest first. On any
// backend or auth error the collection is reported empty and the error flag
// set; a stale or partial view is never shown.
func (c *Controller) LoadAll(ctx context.Context) error {
	items, err := c.backend.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}

	if err != nil {
		c.items = nil
		c.loadErr = fmt.Sprintf("failed to load tasks: %v", err)
		return err
	}

	c.items = items
	c.loadErr = ""
	return nil
}

// Create validates locally, sends the new task without id/timestamp/owner,
// and prepends the server-returned row to keep descending creation order.
// On failure the collection is unchanged.
func (c *Controller) Create(ctx context.Context, title, description string, status service.Status) (service.Task, error) {
	if err := validateFields(title, description); err != nil {
		return service.Task{}, err
	}
	if status == "" {
		status = service.StatusTodo
	}
	if !status.Valid() {
		return service.Task{}, fmt.Errorf("%w: unknown status %q", service.ErrValidation, status)
	}

	created, err := c.backend.CreateTask(ctx, title, description, status)
	if err != nil {
		return service.Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return created, nil
	}
	c.items = append([]service.Task{created}, c.items...)
	return created, nil
}

// Update sends only the changed fields and replaces the matching element in
// place, preserving its position. On failure the collection is unchanged.
func (c *Controller) Update(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if patch.Empty() {
		return service.Task{}, fmt.Errorf("%w: nothing to update", service.ErrValidation)
	}
	if patch.Title != nil {
		if len(*patch.Title) == 0 {
			return service.Task{}, fmt.Errorf("%w: title is required", service.ErrValidation)
		}
		if len(*patch.Title) > service.MaxTitleLen {
			return service.Task{}, fmt.Errorf("%w: title longer than %d characters", service.ErrValidation, service.MaxTitleLen)
		}
	}
	if patch.Description != nil && len(*patch.Description) > service.MaxDescriptionLen {
		return service.Task{}, fmt.Errorf("%w: description longer than %d characters", service.ErrValidation, service.MaxDescriptionLen)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return service.Task{}, fmt.Errorf("%w: unknown status %q", service.ErrValidation, *patch.Status)
	}

	updated, err := c.backend.UpdateTask(ctx, id, patch)
	if err != nil {
		return service.Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return updated, nil
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = updated
			break
		}
	}
	return updated, nil
}

// ToggleStatus flips a task between done and todo. The in_progress status is
// deliberately outside the toggle cycle: marking done must stay a one-step
// action, and edit --status covers moving a task into in_progress.
func (c *Controller) ToggleStatus(ctx context.Context, id string) (service.Task, error) {
	current, ok := c.Get(id)
	if !ok {
		return service.Task{}, service.ErrNotFound
	}

	next := service.StatusDone
	if current.Status == service.StatusDone {
		next = service.StatusTodo
	}

	return c.Update(ctx, id, service.TaskPatch{Status: &next})
}

// Delete removes a task after the backend confirms the row is gone. On
// failure the collection is unchanged. Confirmation is the caller's job.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.backend.DeleteTask(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a task from the local collection by id.
func (c *Controller) Get(id string) (service.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.items {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Snapshot returns a copy of the working set in display order.
func (c *Controller) Snapshot() []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]service.Task, len(c.items))
	copy(items, c.items)
	return items
}

// Filter returns the tasks in the given status, preserving order.
func (c *Controller) Filter(status service.Status) []service.Task {
	snapshot := c.Snapshot()
	return funk.Filter(snapshot, func(t service.Task) bool {
		return t.Status == status
	}).([]service.Task)
}

// Err returns the diagnostic from the last failed load, if any.
func (c *Controller) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Close marks the controller torn down. In-flight calls may still complete
// on the backend but their results no longer touch local state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.items = nil
	logger.Log.Debugw("task controller closed")
}

func validateFields(title, description string) error {
	if len(title) == 0 {
		return fmt.Errorf("%w: title is required", service.ErrValidation)
	}
	if len(title) > service.MaxTitleLen {
		return fmt.Errorf("%w: title longer than %d characters", service.ErrValidation, service.MaxTitleLen)
	}
	if len(description) > service.MaxDescriptionLen {
		return fmt.Errorf("%w: description longer than %d characters", service.ErrValidation, service.MaxDescriptionLen)
	}
	return nil
}
