package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the drivers. The
// repositories hang off it so a transaction-scoped Store exposes the same
// surface and nested transactions cannot be started by accident.
type Store interface {
	Accounts() Accounts
	RefreshTokens() RefreshTokens
	Tasks() Tasks

	ApplyMigrations() error

	// WithTx runs fn in a write transaction that holds the database write
	// lock from its first statement. fn's error rolls the transaction back;
	// nil commits it.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Accounts interface {
	// CreateAccount inserts a new account. A duplicate email returns
	// ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches the email exactly (case-sensitive).
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash looks a token up by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked from false to true. It reports
	// whether this call did the flip; false means the token was already
	// revoked (or does not exist).
	RevokeRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error)

	// RevokeExpiredRefreshTokens marks every unrevoked token with
	// expires_at <= now as revoked and returns how many it touched.
	RevokeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	// CountActiveRefreshTokens counts an account's usable tokens at now.
	CountActiveRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error)
}

type Tasks interface {
	// ListTasks returns the account's tasks oldest first.
	ListTasks(ctx context.Context, accountID string) ([]domain.Task, error)

	// GetTask returns a task owned by accountID. Tasks of other accounts
	// are reported as ErrNotFound.
	GetTask(ctx context.Context, accountID, id string) (domain.Task, error)

	CreateTask(ctx context.Context, t domain.Task) error

	// SetTaskComplete updates the completion flag and returns the new row.
	SetTaskComplete(ctx context.Context, accountID, id string, complete bool, now time.Time) (domain.Task, error)

	DeleteTask(ctx context.Context, accountID, id string) error

	CountTasks(ctx context.Context, accountID string) (int64, error)

	// TitleExists reports whether the account already has a task with this
	// title, ignoring case.
	TitleExists(ctx context.Context, accountID, title string) (bool, error)
}
