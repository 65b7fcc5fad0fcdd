package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/store"
	"github.com/aussiebroadwan/todo/internal/todo/store/drivers/sqlite"
	"github.com/aussiebroadwan/todo/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "todo.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createAccount(t *testing.T, s store.Store, email string) domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Accounts().CreateAccount(context.Background(), a))
	return a
}

func createToken(t *testing.T, s store.Store, accountID, hash string, expires time.Time) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(context.Background(), domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: accountID,
		TokenHash: hash,
		ExpiresAt: expires,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestInMemoryStore(t *testing.T) {
	s, err := sqlite.NewStore(sqlite.DSN(":memory:"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations())
	a := createAccount(t, s, "mem@example.com")

	got, err := s.Accounts().GetAccountByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Email, got.Email)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := createAccount(t, s, "ada@example.com")

	got, err := s.Accounts().GetAccountByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, domain.RoleUser, got.Role)
	require.WithinDuration(t, a.CreatedAt, got.CreatedAt, time.Millisecond)

	t.Run("email lookup is case-sensitive", func(t *testing.T) {
		_, err := s.Accounts().GetAccountByEmail(ctx, "Ada@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := a
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("differently cased email is a new account", func(t *testing.T) {
		createAccount(t, s, "ADA@example.com")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Accounts().GetAccountByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAccount(t, s, "ada@example.com")
	now := time.Now().UTC()

	createToken(t, s, a.ID, "hash-1", now.Add(time.Hour))

	tok, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, a.ID, tok.AccountID)
	require.False(t, tok.Revoked)
	require.True(t, tok.Usable(now))

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	flipped, err := s.RefreshTokens().RevokeRefreshToken(ctx, "hash-1", now)
	require.NoError(t, err)
	require.True(t, flipped)

	flipped, err = s.RefreshTokens().RevokeRefreshToken(ctx, "hash-1", now)
	require.NoError(t, err)
	require.False(t, flipped, "second revoke must not report a flip")

	tok, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, tok.Revoked)
}

func TestRevokeRefreshToken_ExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAccount(t, s, "ada@example.com")
	createToken(t, s, a.ID, "contended", time.Now().Add(time.Hour))

	const workers = 10
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx store.Store) error {
				ok, err := tx.RefreshTokens().RevokeRefreshToken(ctx, "contended", time.Now())
				if ok {
					wins.Add(1)
				}
				return err
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, wins.Load())
}

func TestRevokeExpiredRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAccount(t, s, "ada@example.com")
	now := time.Now().UTC()

	createToken(t, s, a.ID, "expired", now.Add(-time.Minute))
	createToken(t, s, a.ID, "expires-now", now)
	createToken(t, s, a.ID, "live", now.Add(time.Hour))

	active, err := s.RefreshTokens().CountActiveRefreshTokens(ctx, a.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, active)

	n, err := s.RefreshTokens().RevokeExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	for _, hash := range []string{"expired", "expires-now"} {
		tok, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		require.NoError(t, err, "rows are kept as audit trail")
		require.True(t, tok.Revoked)
	}

	live, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "live")
	require.NoError(t, err)
	require.False(t, live.Revoked)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAccount(t, s, "ada@example.com")

	boom := domain.ValidationError("boom")
	err := s.WithTx(ctx, func(tx store.Store) error {
		now := time.Now().UTC()
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID: idx.New().String(), AccountID: a.ID, TokenHash: "rolled-back",
			ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "rolled-back")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := createAccount(t, s, "alice@example.com")
	bob := createAccount(t, s, "bob@example.com")

	base := time.Now().UTC()
	var ids []string
	for i, title := range []string{"Buy milk", "Walk dog", "Écrire"} {
		task := domain.Task{
			ID:        idx.New().String(),
			AccountID: alice.ID,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base,
		}
		require.NoError(t, s.Tasks().CreateTask(ctx, task))
		ids = append(ids, task.ID)
	}

	list, err := s.Tasks().ListTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Buy milk", list[0].Title)

	empty, err := s.Tasks().ListTasks(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, empty)

	n, err := s.Tasks().CountTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	t.Run("title exists ignores case", func(t *testing.T) {
		ok, err := s.Tasks().TitleExists(ctx, alice.ID, "BUY MILK")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Tasks().TitleExists(ctx, alice.ID, "écrire")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Tasks().TitleExists(ctx, bob.ID, "Buy milk")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("toggle", func(t *testing.T) {
		task, err := s.Tasks().SetTaskComplete(ctx, alice.ID, ids[0], true, time.Now())
		require.NoError(t, err)
		require.True(t, task.IsComplete)
	})

	t.Run("other account cannot see or touch", func(t *testing.T) {
		_, err := s.Tasks().GetTask(ctx, bob.ID, ids[0])
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Tasks().SetTaskComplete(ctx, bob.ID, ids[0], false, time.Now())
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, s.Tasks().DeleteTask(ctx, bob.ID, ids[0]), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Tasks().DeleteTask(ctx, alice.ID, ids[1]))
		require.ErrorIs(t, s.Tasks().DeleteTask(ctx, alice.ID, ids[1]), store.ErrNotFound)
	})
}
