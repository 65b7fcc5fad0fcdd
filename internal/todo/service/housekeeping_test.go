package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stale, err := f.auth.Register(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	f.clock.Advance(jwtx.DefaultRefreshTokenTTL + time.Minute)
	fresh, err := f.auth.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	var logs bytes.Buffer
	hk := service.NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(&logs, nil)), 0)
	hk.Now = f.clock.Now
	require.Equal(t, time.Hour, hk.Interval)

	require.EqualValues(t, 1, hk.Sweep(ctx))
	require.EqualValues(t, 0, hk.Sweep(ctx), "already revoked tokens are left alone")
	require.Contains(t, logs.String(), "revoked_refresh_tokens=1")

	_, err = f.auth.Refresh(ctx, stale.RefreshToken)
	require.ErrorIs(t, err, domain.ErrRefreshTokenInvalid, "row kept, still rejected")

	_, err = f.auth.Refresh(ctx, fresh.RefreshToken)
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)

	hk := service.NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), time.Hour)
	hk.Start()
	hk.Stop()
}
