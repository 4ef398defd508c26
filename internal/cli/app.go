package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/pingate/internal/accounts"
	"github.com/dmitrijs2005/pingate/internal/auth"
	"github.com/dmitrijs2005/pingate/internal/config"
	"github.com/dmitrijs2005/pingate/internal/cryptox"
	"github.com/dmitrijs2005/pingate/internal/logging"
	"github.com/dmitrijs2005/pingate/internal/models"
	"github.com/dmitrijs2005/pingate/internal/storage"
)

// authGate is the part of *auth.Gate the CLI drives.
type authGate interface {
	Authenticate(ctx context.Context, pin []byte) (models.User, error)
	Logout()
	ClearState(ctx context.Context)
	ClearStoredUser(ctx context.Context)
	ResetAllLocalState(ctx context.Context)
	StoreUser(ctx context.Context, u models.User) error
	State() auth.State
	RemainingAttempts() int
	LockoutSecondsRemaining() (int, bool)
	HasStoredUser(ctx context.Context) bool
	StoredUserName(ctx context.Context) (string, bool)
	AuthenticatedUser() (models.User, bool)
	Subscribe(fn func(auth.State)) func()
}

type accountRegistry interface {
	Link(ctx context.Context, id string) (bool, error)
	Unlink(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

type pinHasher interface {
	Hash(pin []byte) (string, error)
}

type App struct {
	gate     authGate
	accounts accountRegistry
	hasher   pinHasher
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	closeMu sync.Mutex
	closeFn func() error
}

// NewApp opens the configured store and builds the gate, registry and hasher
// on top of it.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	repos, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		logger.Error(ctx, "error opening storage", "driver", cfg.StorageDriver, "error", err)
		return nil, err
	}

	hasher, err := cryptox.NewHasher(cfg.PINHashAlgorithm)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	policy, err := auth.NewEscalatingPolicy(cfg.MaxFailedAttempts, cfg.LockoutSchedule)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	gate, err := auth.NewGate(ctx, auth.Deps{
		Store:    repos.Metadata,
		Verifier: hasher,
		Policy:   policy,
		Logger:   logger,
	}, auth.Options{
		Threshold:       cfg.MaxFailedAttempts,
		MonitorInterval: cfg.LockoutCheckInterval,
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(gate, accounts.NewRegistry(repos.Metadata), hasher, logger, os.Stdin, os.Stdout)
	a.closeFn = func() error {
		gate.Close()
		return repos.Close()
	}
	return a, nil
}

func newApp(gate authGate, registry accountRegistry, hasher pinHasher, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		gate:     gate,
		accounts: registry,
		hasher:   hasher,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run shows the lockout state on startup and then serves the REPL until
// exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to pingate (type 'help' for commands)")

	unsubscribe := a.gate.Subscribe(a.lockoutWatcher())
	defer unsubscribe()

	if secs, locked := a.gate.LockoutSecondsRemaining(); locked {
		fmt.Fprintf(a.out, "Too many attempts. Try again in %d seconds.\n", secs)
	} else if !a.gate.HasStoredUser(ctx) {
		fmt.Fprintln(a.out, "No account on this device yet. Type 'enroll' to set one up.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the gate and the store. Only the first call does work.
func (a *App) Close() error {
	a.closeMu.Lock()
	fn := a.closeFn
	a.closeFn = nil
	a.closeMu.Unlock()

	if fn == nil {
		return nil
	}
	return fn()
}

// lockoutWatcher returns an observer that announces the end of a lockout.
// It runs with the gate locked, so it only looks at the snapshot it is given.
func (a *App) lockoutWatcher() func(auth.State) {
	prev := a.gate.State().Session.Kind
	return func(st auth.State) {
		if prev == auth.SessionLocked && st.Session.Kind == auth.SessionUnauthenticated {
			fmt.Fprintln(a.out, "\nLockout expired. You can try your PIN again.")
		}
		prev = st.Session.Kind
	}
}

func (a *App) isUnlocked() bool {
	_, ok := a.gate.AuthenticatedUser()
	return ok
}

func (a *App) getStatus() string {
	st := a.gate.State()
	switch st.Session.Kind {
	case auth.SessionAuthenticated:
		return st.Session.User.Email
	case auth.SessionLocked:
		if secs, ok := a.gate.LockoutSecondsRemaining(); ok {
			return fmt.Sprintf("locked %ds", secs)
		}
	}
	return "signed out"
}
