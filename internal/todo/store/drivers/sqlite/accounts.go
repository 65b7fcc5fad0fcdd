package sqlite

import (
	"context"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, password_hash, role, created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.Role, utc(a.CreatedAt), utc(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}
