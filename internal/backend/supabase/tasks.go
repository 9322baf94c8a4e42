package supabase

import (
	"context"
	"fmt"
	"time"

	"taskdeck/internal/service"
)

// taskRecord is the wire shape of a row in the tasks table.
type taskRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      service.Status `json:"status"`
	CreatedAt   string         `json:"created_at"`
	UserID      string         `json:"user_id"`
}

func (r taskRecord) toTask() service.Task {
	t := service.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		UserID:      r.UserID,
	}
	t.CreatedAt = parseTimestamp(r.CreatedAt)
	return t
}

// parseTimestamp accepts the timestamp shapes PostgREST emits: RFC 3339 with
// offset for timestamptz columns, and a bare local form for timestamp ones.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListTasks implements service.Tasks. Rows are requested newest first; the
// owner filter is applied server-side on top of row-level security.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	token, err := c.bearer()
	if err != nil {
		return nil, err
	}
	uid, err := c.currentUserID()
	if err != nil {
		return nil, err
	}

	var rows []taskRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParam("select", "*").
		SetQueryParam("user_id", "eq."+uid).
		SetQueryParam("order", "created_at.desc").
		SetResult(&rows).
		Get(restPath + "/tasks")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return nil, restError(resp)
	}

	tasks := make([]service.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

// CreateTask implements service.Tasks. The server assigns id and created_at
// and returns the stored row.
func (c *Client) CreateTask(ctx context.Context, title, description string, status service.Status) (service.Task, error) {
	token, err := c.bearer()
	if err != nil {
		return service.Task{}, err
	}
	uid, err := c.currentUserID()
	if err != nil {
		return service.Task{}, err
	}

	var rows []taskRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]any{
			"title":       title,
			"description": description,
			"status":      status,
			"user_id":     uid,
		}).
		SetResult(&rows).
		Post(restPath + "/tasks")
	if err != nil {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return service.Task{}, restError(resp)
	}
	if len(rows) == 0 {
		return service.Task{}, fmt.Errorf("%w: insert returned no row", service.ErrBackend)
	}

	return rows[0].toTask(), nil
}

// UpdateTask implements service.Tasks. Only the changed fields cross the
// wire; a response without rows means the id matched nothing the current
// user owns.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	token, err := c.bearer()
	if err != nil {
		return service.Task{}, err
	}
	uid, err := c.currentUserID()
	if err != nil {
		return service.Task{}, err
	}

	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}

	var rows []taskRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetQueryParam("user_id", "eq."+uid).
		SetBody(body).
		SetResult(&rows).
		Patch(restPath + "/tasks")
	if err != nil {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return service.Task{}, restError(resp)
	}
	if len(rows) == 0 {
		return service.Task{}, service.ErrNotFound
	}

	return rows[0].toTask(), nil
}

// DeleteTask implements service.Tasks.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	token, err := c.bearer()
	if err != nil {
		return err
	}
	uid, err := c.currentUserID()
	if err != nil {
		return err
	}

	var rows []taskRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetQueryParam("user_id", "eq."+uid).
		SetResult(&rows).
		Delete(restPath + "/tasks")
	if err != nil {
		return fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return restError(resp)
	}
	if len(rows) == 0 {
		return service.ErrNotFound
	}

	return nil
}
