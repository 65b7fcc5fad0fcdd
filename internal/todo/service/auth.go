package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/store"
	"github.com/aussiebroadwan/todo/pkg/cryptox"
	"github.com/aussiebroadwan/todo/pkg/idx"
	"github.com/aussiebroadwan/todo/pkg/slogx"
)

// AuthService owns the session lifecycle: register, login, refresh-token
// rotation and logout.
type AuthService struct {
	Store       store.Store
	Credentials CredentialVerifier
	Tokens      *TokenIssuer

	// Now is the service clock. Nil means time.Now.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an account with the User role and logs it in.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.AuthResult, error) {
	email = strings.TrimSpace(email)

	switch {
	case email == "" || strings.TrimSpace(password) == "":
		return domain.AuthResult{}, domain.ValidationError("Email and password are required")
	case !strings.Contains(email, "@"):
		return domain.AuthResult{}, domain.ValidationError("Email address is not valid")
	}

	_, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.AuthResult{}, domain.ErrEmailExists
	case !errors.Is(err, store.ErrNotFound):
		return domain.AuthResult{}, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := s.Credentials.Hash(password)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.AuthResult{}, domain.ErrEmailExists
		}
		return domain.AuthResult{}, fmt.Errorf("create account: %w", err)
	}

	slogx.FromContext(ctx).Info("account registered", "account_id", account.ID)

	return s.Login(ctx, email, password)
}

// Login checks the credentials and starts a new session. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	l := slogx.FromContext(ctx)
	email = strings.TrimSpace(email)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, fmt.Errorf("lookup account: %w", err)
		}
		// Burn the same hashing cost as a real verification.
		_ = s.Credentials.Verify(password, s.dummy())
		l.Info("login failed")
		return domain.AuthResult{}, domain.ErrInvalidCredentials
	}

	if err := s.Credentials.Verify(password, account.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", "account_id", account.ID, "err", err)
		}
		l.Info("login failed", "account_id", account.ID)
		return domain.AuthResult{}, domain.ErrInvalidCredentials
	}

	var result domain.AuthResult
	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		var err error
		result, err = s.startSession(ctx, tx, account, s.now())
		return err
	})
	if err != nil {
		return domain.AuthResult{}, err
	}

	l.Info("login succeeded", "account_id", account.ID)
	return result, nil
}

// Refresh exchanges a refresh token for a new access/refresh pair. The old
// token is revoked in the same immediate transaction that inserts the new
// one, and the revoke is a compare-and-swap: two concurrent calls with the
// same token never both succeed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.AuthResult, error) {
	l := slogx.FromContext(ctx)
	hash := cryptox.FingerprintToken(refreshToken)

	var result domain.AuthResult
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		now := s.now()

		old, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrRefreshTokenNotFound
			}
			return fmt.Errorf("lookup refresh token: %w", err)
		}

		if !old.Usable(now) {
			if old.Revoked {
				l.Warn("revoked refresh token presented", "account_id", old.AccountID)
			}
			return domain.ErrRefreshTokenInvalid
		}

		flipped, err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash, now)
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		if !flipped {
			return domain.ErrRefreshTokenInvalid
		}

		account, err := tx.Accounts().GetAccountByID(ctx, old.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrTokenAccountNotFound
			}
			return fmt.Errorf("load account: %w", err)
		}

		result, err = s.startSession(ctx, tx, account, now)
		return err
	})
	if err != nil {
		return domain.AuthResult{}, err
	}

	return result, nil
}

// Logout revokes a refresh token. Revoking an already revoked token is a
// successful no-op; an unknown token is NotFound. Outstanding access tokens
// stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	hash := cryptox.FingerprintToken(refreshToken)

	return s.Store.WithTx(ctx, func(tx store.Store) error {
		t, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrRefreshTokenNotFound
			}
			return fmt.Errorf("lookup refresh token: %w", err)
		}

		if t.Revoked {
			return nil
		}

		if _, err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash, s.now()); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}

		slogx.FromContext(ctx).Info("logged out", "account_id", t.AccountID)
		return nil
	})
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, accountID string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

// startSession persists a new refresh token for account and signs the
// matching access token.
func (s *AuthService) startSession(
	ctx context.Context,
	tx store.Store,
	account domain.Account,
	now time.Time,
) (domain.AuthResult, error) {
	refresh, record, err := s.Tokens.IssueRefreshToken(account.ID, now)
	if err != nil {
		return domain.AuthResult{}, err
	}

	if err := tx.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return domain.AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	access, err := s.Tokens.IssueAccessToken(account, now)
	if err != nil {
		return domain.AuthResult{}, err
	}

	return domain.AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        account.Email,
		Role:         account.Role,
	}, nil
}

// dummy returns a valid hash of a throwaway password, used to equalise the
// timing of logins for unknown emails.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Credentials.Hash(idx.New().String())
	})
	return s.dummyHash
}
