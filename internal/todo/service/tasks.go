package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/store"
	"github.com/aussiebroadwan/todo/pkg/idx"
)

// TaskService is plain validated persistence of an account's tasks.
type TaskService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *TaskService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TaskService) List(ctx context.Context, accountID string) ([]domain.Task, error) {
	tasks, err := s.Store.Tasks().ListTasks(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, accountID, id string) (domain.Task, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	t, err := s.Store.Tasks().GetTask(ctx, accountID, id)
	if err != nil {
		return domain.Task{}, mapTaskErr(err)
	}
	return t, nil
}

// Add validates title and creates an incomplete task. The duplicate and
// quota checks run in the same write transaction as the insert.
func (s *TaskService) Add(ctx context.Context, accountID, title string) (domain.Task, error) {
	title, err := ValidateTaskTitle(title)
	if err != nil {
		return domain.Task{}, err
	}

	now := s.now()
	task := domain.Task{
		ID:        idx.NewAt(now).String(),
		AccountID: accountID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		exists, err := tx.Tasks().TitleExists(ctx, accountID, title)
		if err != nil {
			return fmt.Errorf("check title: %w", err)
		}
		if exists {
			return domain.ValidationError("A task with this title already exists.")
		}

		n, err := tx.Tasks().CountTasks(ctx, accountID)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if n >= domain.MaxTasksPerAccount {
			return domain.ValidationError(fmt.Sprintf(
				"You have reached the maximum number of tasks allowed (%d).", domain.MaxTasksPerAccount))
		}

		if err := tx.Tasks().CreateTask(ctx, task); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ValidationError("A task with this title already exists.")
			}
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

// Toggle flips the completion flag.
func (s *TaskService) Toggle(ctx context.Context, accountID, id string) (domain.Task, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	var out domain.Task
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		t, err := tx.Tasks().GetTask(ctx, accountID, id)
		if err != nil {
			return mapTaskErr(err)
		}

		out, err = tx.Tasks().SetTaskComplete(ctx, accountID, id, !t.IsComplete, s.now())
		return mapTaskErr(err)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

func (s *TaskService) Delete(ctx context.Context, accountID, id string) error {
	if _, err := idx.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	return mapTaskErr(s.Store.Tasks().DeleteTask(ctx, accountID, id))
}

// ValidateTaskTitle trims title and checks length and character set. It
// returns the trimmed title.
func ValidateTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.ValidationError("Title is required.")
	}

	if n := utf8.RuneCountInString(title); n < domain.TaskTitleMinLen || n > domain.TaskTitleMaxLen {
		return "", domain.ValidationError(fmt.Sprintf(
			"Title must be between %d and %d characters.", domain.TaskTitleMinLen, domain.TaskTitleMaxLen))
	}

	for _, r := range title {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && !unicode.IsPunct(r) {
			return "", domain.ValidationError("Title contains invalid characters.")
		}
	}

	return title, nil
}

// Tasks of other accounts are indistinguishable from missing ones.
func mapTaskErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domain.ErrTaskNotFound
	case domain.KindOf(err) != 0:
		return err
	default:
		return fmt.Errorf("task store: %w", err)
	}
}
