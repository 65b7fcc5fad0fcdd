package domain

import "time"

// Task is a to-do item owned by one account.
type Task struct {
	ID         string
	AccountID  string
	Title      string
	IsComplete bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Limits on task data.
const (
	TaskTitleMinLen    = 3
	TaskTitleMaxLen    = 100
	MaxTasksPerAccount = 1000
)
