package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/todo/internal/todo/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Accounts() store.Accounts           { return &accountsRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) Tasks() store.Tasks                 { return &tasksRepo{db: t.tx} }

// Nested transactions are not supported.
func (t *txStore) WithTx(context.Context, func(store.Store) error) error {
	return sql.ErrTxDone
}

// The outer Store owns the connection and the schema.
func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }
