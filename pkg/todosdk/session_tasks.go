package todosdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the account behind the session.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.Do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListTasks returns the caller's tasks, oldest first.
func (s *Session) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := s.Do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one task.
func (s *Session) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := s.Do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask adds a task.
func (s *Session) CreateTask(ctx context.Context, title string) (*Task, error) {
	var t Task
	if err := s.Do(ctx, http.MethodPost, "/tasks", CreateTaskRequest{Title: title}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ToggleTask flips a task's completion flag.
func (s *Session) ToggleTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := s.Do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id)+"/toggle", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	return s.Do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}
