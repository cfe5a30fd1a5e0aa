package twofactor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

const (
	testUserID   = "u1"
	testEmail    = "alice@example.com"
	testPassword = "correct horse battery staple"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *twofactor.Service
	store *twofactor.MemoryStore
	clock *testClock
}

func testConfig() twofactor.Config {
	cfg := twofactor.DefaultConfig()
	cfg.BackupCodeCost = bcrypt.MinCost
	return cfg
}

func newFixture(t *testing.T, cfg twofactor.Config, opts ...twofactor.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	store := twofactor.NewMemoryStore()
	require.NoError(t, store.CreateAccount(ctx, testUserID, testEmail))

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.SetPasswordHash(ctx, testUserID, hash))

	clock := newTestClock()
	opts = append([]twofactor.Option{twofactor.WithClock(clock.Now)}, opts...)
	svc, err := twofactor.NewService(store, twofactor.NewBcryptPasswordVerifier(store.PasswordHash), cfg, opts...)
	require.NoError(t, err)

	return &fixture{svc: svc, store: store, clock: clock}
}

// enable runs the full enrollment and returns the plain secret and the
// formatted backup codes.
func (f *fixture) enable(t *testing.T) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := f.svc.BeginSetup(ctx, testUserID)
	require.NoError(t, err)

	code, err := totp.Code(setup.Secret, f.clock.Now())
	require.NoError(t, err)

	codes, err := f.svc.ConfirmSetup(ctx, testUserID, code)
	require.NoError(t, err)
	return setup.Secret, codes
}

func (f *fixture) record(t *testing.T) twofactor.Record {
	t.Helper()
	acc, err := f.store.GetAccount(context.Background(), testUserID)
	require.NoError(t, err)
	return acc.TwoFactor
}

func (f *fixture) currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.Code(secret, f.clock.Now())
	require.NoError(t, err)
	return code
}
