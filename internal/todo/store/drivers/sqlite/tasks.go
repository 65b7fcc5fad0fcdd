package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/store"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, account_id, title, is_complete, created_at, updated_at`

func (r *tasksRepo) ListTasks(ctx context.Context, accountID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE account_id = ? ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tasksRepo) GetTask(ctx context.Context, accountID, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND account_id = ?`, id, accountID)
	return scanTask(row)
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Title, t.IsComplete, utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *tasksRepo) SetTaskComplete(
	ctx context.Context,
	accountID, id string,
	complete bool,
	now time.Time,
) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET is_complete = ?, updated_at = ? WHERE id = ? AND account_id = ?`,
		complete, utc(now), id, accountID,
	)
	if err != nil {
		return domain.Task{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Task{}, err
	} else if n == 0 {
		return domain.Task{}, store.ErrNotFound
	}
	return r.GetTask(ctx, accountID, id)
}

func (r *tasksRepo) DeleteTask(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) CountTasks(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

// TitleExists folds case in Go: SQLite's NOCASE only folds ASCII.
func (r *tasksRepo) TitleExists(ctx context.Context, accountID, title string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM tasks WHERE account_id = ?`, accountID)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return false, err
		}
		if strings.EqualFold(existing, title) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.AccountID, &t.Title, &t.IsComplete, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}
