package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pingate/internal/config"
	"github.com/dmitrijs2005/pingate/internal/logging"
)

func TestRun_ScriptedSession(t *testing.T) {
	captureOutput(t)
	h := newHarness(t)
	h.enroll(t, "1234")
	stubInputs(t, nil, []string{"1234"})

	h.app.reader.Reset(strings.NewReader("unlock\nlink chk-9\nexit\n"))
	h.app.Run(context.Background())

	assert.Contains(t, h.out.String(), "Welcome to pingate")
	assert.Contains(t, h.out.String(), "Welcome back, Ada Lovelace!")
	assert.Contains(t, h.out.String(), "Linked account chk-9.")
}

func TestRun_AnnouncesState(t *testing.T) {
	captureOutput(t)

	h := newHarness(t)
	h.app.Run(context.Background())
	assert.Contains(t, h.out.String(), "No account on this device yet.")

	h = newHarness(t)
	h.enroll(t, "1234")
	for i := 0; i < 3; i++ {
		_, _ = h.gate.Authenticate(context.Background(), []byte("0000"))
	}
	h.app.Run(context.Background())
	assert.Contains(t, h.out.String(), "Too many attempts. Try again in 30 seconds.")
}

func TestNewApp_MemoryStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDriver = "memory"
	cfg.PINHashAlgorithm = "bcrypt"
	cfg.LockoutCheckInterval = 10 * time.Millisecond

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, app.closeFn)

	assert.False(t, app.gate.HasStoredUser(context.Background()))
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestNewApp_SQLiteStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDSN = filepath.Join(t.TempDir(), "pingate.db")

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.accounts.Link(context.Background(), "chk-1")
	require.NoError(t, err)
	ids, err := app.accounts.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chk-1"}, ids)
}

func TestNewApp_Errors(t *testing.T) {
	base := func() *config.Config {
		cfg := &config.Config{}
		cfg.LoadDefaults()
		cfg.StorageDriver = "memory"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.StorageDriver = "mongo" }},
		{"unknown algorithm", func(c *config.Config) { c.PINHashAlgorithm = "md5" }},
		{"empty schedule", func(c *config.Config) { c.LockoutSchedule = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			app, err := NewApp(context.Background(), cfg, logging.Discard())
			require.Error(t, err)
			assert.Nil(t, app)
		})
	}
}

func TestClose_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	a := &App{closeFn: func() error { return boom }}
	require.ErrorIs(t, a.Close(), boom)
	require.NoError(t, a.Close())
}
