package service_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/internal/todo/store/drivers/sqlite"
	"github.com/aussiebroadwan/todo/pkg/cryptox"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "todo-api"
	testAudience = "todo-web"
)

var testKey = []byte("service-test-signing-key-0123456789")

// clock is a settable test clock.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store    *sqlite.Store
	auth     *service.AuthService
	tasks    *service.TaskService
	verifier *jwtx.HS256Verifier
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "todo.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256Signer(testKey, testIssuer, testAudience)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testKey, testIssuer, testAudience)
	require.NoError(t, err)

	hasher := cryptox.NewPasswordHasher("test-pepper").WithParams(cryptox.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16,
	})

	c := &clock{t: time.Now().UTC().Truncate(time.Second)}
	verifier.Now = c.Now

	return &fixture{
		store: st,
		auth: &service.AuthService{
			Store:       st,
			Credentials: hasher,
			Tokens:      service.NewTokenIssuer(signer, 0, 0),
			Now:         c.Now,
		},
		tasks:    &service.TaskService{Store: st, Now: c.Now},
		verifier: verifier,
		clock:    c,
	}
}
