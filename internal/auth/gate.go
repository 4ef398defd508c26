// Package auth implements the authentication gate: the device session state
// machine, PIN verification, failed-attempt counting and time-boxed lockout.
//
// All state transitions are serialised by one mutex. Queries recompute the
// lockout from its deadline on every call; the background monitor only
// exists so observers see the Locked → Unauthenticated transition without
// polling.
package auth

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/pingate/internal/common"
	"github.com/dmitrijs2005/pingate/internal/logging"
	"github.com/dmitrijs2005/pingate/internal/models"
	"github.com/dmitrijs2005/pingate/internal/repositories/metadata"
)

const (
	DefaultThreshold       = 3
	DefaultMonitorInterval = time.Second
)

// Deps are the gate's collaborators. Logger and Now are optional.
type Deps struct {
	Store    metadata.Repository
	Verifier PINVerifier
	Policy   LockoutPolicy
	Logger   logging.Logger
	Now      func() time.Time
}

// Options tune the gate. Zero values select the defaults.
type Options struct {
	// Threshold is the failed-attempt count at which the policy is consulted.
	Threshold int
	// MonitorInterval is the lockout-expiry check period.
	MonitorInterval time.Duration
}

type observer struct {
	id int
	fn func(State)
}

// Gate owns the session of the single device account.
type Gate struct {
	mu sync.Mutex

	store     *stateStore
	verifier  PINVerifier
	policy    LockoutPolicy
	logger    logging.Logger
	now       func() time.Time
	threshold int
	interval  time.Duration

	session        Session
	failedAttempts int
	lockedUntil    *time.Time

	monitor    *lockoutMonitor
	observers  []observer
	observerID int
	closed     bool
}

// NewGate builds a gate and reloads the attempt counter and lockout deadline
// from deps.Store. A deadline that already passed is expired on the spot; a
// future one leaves the gate Locked with the expiry monitor running.
func NewGate(ctx context.Context, deps Deps, opts Options) (*Gate, error) {
	if deps.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("auth: pin verifier is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("auth: lockout policy is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "auth")

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MonitorInterval <= 0 {
		opts.MonitorInterval = DefaultMonitorInterval
	}

	g := &Gate{
		store:     &stateStore{repo: deps.Store, logger: logger},
		verifier:  deps.Verifier,
		policy:    deps.Policy,
		logger:    logger,
		now:       now,
		threshold: opts.Threshold,
		interval:  opts.MonitorInterval,
		session:   Unauthenticated(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.failedAttempts = g.store.loadAttempts(ctx)
	g.lockedUntil = g.store.loadDeadline(ctx)
	if g.lockedUntil != nil {
		if g.now().Before(*g.lockedUntil) {
			g.session = Locked(*g.lockedUntil)
			g.startMonitorLocked()
		} else {
			g.expireLocked(ctx)
		}
	}
	return g, nil
}

// Authenticate verifies pin against the stored account.
//
// An active lockout fails with *LockedError before any hashing. A missing
// account fails with ErrSessionExpired. A wrong PIN fails with ErrInvalidPIN,
// or with *LockedError when it pushes the counter to the threshold and the
// policy yields a positive duration.
func (g *Gate) Authenticate(ctx context.Context, pin []byte) (models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if remaining, locked := g.lockRemainingLocked(ctx, now); locked {
		g.logger.Debug(ctx, "authentication rejected", "operation", "authenticate", "outcome", "locked",
			"locked_until", *g.lockedUntil)
		return models.User{}, &LockedError{Remaining: remaining}
	}

	user, ok := g.store.loadUser(ctx)
	if !ok {
		return models.User{}, ErrSessionExpired
	}

	if g.verifier.Verify(pin, user.PINHash) {
		g.stopMonitorLocked()
		g.failedAttempts = 0
		g.lockedUntil = nil
		g.session = Authenticated(user)
		g.store.saveAttempts(ctx, 0)
		g.store.saveDeadline(ctx, nil)

		g.logger.Info(ctx, "unlocked", "operation", "authenticate", "outcome", "success")
		g.notifyLocked()
		return user, nil
	}

	g.failedAttempts++
	g.store.saveAttempts(ctx, g.failedAttempts)

	if g.failedAttempts >= g.threshold {
		if d := g.policy.LockoutDuration(g.failedAttempts); d > 0 {
			until := now.Add(d)
			g.lockedUntil = &until
			g.session = Locked(until)
			g.store.saveDeadline(ctx, &until)
			g.startMonitorLocked()

			g.logger.Warn(ctx, "lockout triggered", "operation", "authenticate", "outcome", "blocked",
				"failed_attempts", g.failedAttempts, "locked_until", until)
			g.notifyLocked()
			return models.User{}, &LockedError{Remaining: d}
		}
	}

	g.logger.Info(ctx, "incorrect pin", "operation", "authenticate", "outcome", "failure",
		"failed_attempts", g.failedAttempts)
	g.notifyLocked()
	return models.User{}, ErrInvalidPIN
}

// Logout ends an authenticated session. A Locked session stays locked and
// the attempt counter is left alone.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lockRemainingLocked(context.Background(), g.now())
	if g.session.Kind == SessionAuthenticated {
		g.session = Unauthenticated()
		g.notifyLocked()
	}
}

// ClearState resets the counter and deadline, erases both from the store,
// stops the monitor and leaves the gate Unauthenticated. The stored account
// is kept. Calling it repeatedly has the same effect as calling it once.
func (g *Gate) ClearState(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clearStateLocked(ctx)
	g.notifyLocked()
}

// ClearStoredUser erases the stored account. An authenticated session ends;
// an active lockout stays in force.
func (g *Gate) ClearStoredUser(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clearStoredUserLocked(ctx)
	g.notifyLocked()
}

// ResetAllLocalState erases the account, the lockout state and the linked
// account set.
func (g *Gate) ResetAllLocalState(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clearStoredUserLocked(ctx)
	g.clearStateLocked(ctx)
	g.store.erase(ctx, common.LinkedAccountsKey)

	g.logger.Info(ctx, "local state reset", "operation", "reset")
	g.notifyLocked()
}

// StoreUser persists u as the single device account, replacing any previous
// one. The record is not validated.
func (g *Gate) StoreUser(ctx context.Context, u models.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.saveUser(ctx, u)
}

func (g *Gate) clearStateLocked(ctx context.Context) {
	g.stopMonitorLocked()
	g.failedAttempts = 0
	g.lockedUntil = nil
	g.session = Unauthenticated()
	g.store.erase(ctx, common.FailedAttemptsKey)
	g.store.erase(ctx, common.LockoutUntilKey)
}

func (g *Gate) clearStoredUserLocked(ctx context.Context) {
	g.store.erase(ctx, common.StoredUserKey)
	g.lockRemainingLocked(ctx, g.now())
	if g.session.Kind != SessionLocked {
		g.session = Unauthenticated()
	}
}

// lockRemainingLocked reports the remaining lockout at now. A deadline that
// has passed is expired as a side effect. g.mu must be held.
func (g *Gate) lockRemainingLocked(ctx context.Context, now time.Time) (time.Duration, bool) {
	if g.lockedUntil == nil {
		return 0, false
	}
	if now.Before(*g.lockedUntil) {
		return g.lockedUntil.Sub(now), true
	}
	g.expireLocked(ctx)
	g.notifyLocked()
	return 0, false
}

// expireLocked clears a passed deadline and resets the counter.
func (g *Gate) expireLocked(ctx context.Context) {
	g.stopMonitorLocked()
	g.lockedUntil = nil
	g.failedAttempts = 0
	if g.session.Kind == SessionLocked {
		g.session = Unauthenticated()
	}
	g.store.saveDeadline(ctx, nil)
	g.store.saveAttempts(ctx, 0)

	g.logger.Info(ctx, "lockout expired", "operation", "lockout_expiry")
}

// State returns a snapshot of the session, counter and deadline.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lockRemainingLocked(context.Background(), g.now())
	return g.snapshotLocked()
}

func (g *Gate) Session() Session {
	return g.State().Session
}

// RemainingAttempts is the number of wrong PINs left before the threshold.
func (g *Gate) RemainingAttempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lockRemainingLocked(context.Background(), g.now())
	return max(0, g.threshold-g.failedAttempts)
}

func (g *Gate) IsLockedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, locked := g.lockRemainingLocked(context.Background(), g.now())
	return locked
}

// LockoutSecondsRemaining returns the remaining lockout rounded to the
// nearest second, or false when not locked.
func (g *Gate) LockoutSecondsRemaining() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	remaining, locked := g.lockRemainingLocked(context.Background(), g.now())
	if !locked {
		return 0, false
	}
	return int(math.Round(remaining.Seconds())), true
}

func (g *Gate) HasStoredUser(ctx context.Context) bool {
	_, ok := g.storedUser(ctx)
	return ok
}

func (g *Gate) StoredUserName(ctx context.Context) (string, bool) {
	u, ok := g.storedUser(ctx)
	return u.Name, ok
}

func (g *Gate) StoredUserEmail(ctx context.Context) (string, bool) {
	u, ok := g.storedUser(ctx)
	return u.Email, ok
}

func (g *Gate) storedUser(ctx context.Context) (models.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.store.loadUser(ctx)
}

// AuthenticatedUser returns the user of an authenticated session.
func (g *Gate) AuthenticatedUser() (models.User, bool) {
	s := g.Session()
	if s.Kind != SessionAuthenticated {
		return models.User{}, false
	}
	return s.User, true
}

// Subscribe registers fn to receive a State after every change. fn runs on
// the goroutine that made the change, with the gate locked, so it must not
// call back into the gate. The returned func unregisters fn.
func (g *Gate) Subscribe(fn func(State)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.observerID++
	id := g.observerID
	g.observers = append(g.observers, observer{id: id, fn: fn})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, o := range g.observers {
			if o.id == id {
				g.observers = append(g.observers[:i], g.observers[i+1:]...)
				return
			}
		}
	}
}

// Close stops the lockout monitor and waits for it to exit. Lockouts are
// still enforced afterwards; they just expire lazily.
func (g *Gate) Close() {
	g.mu.Lock()
	m := g.monitor
	g.monitor = nil
	g.closed = true
	g.mu.Unlock()

	if m != nil {
		m.cancel()
		<-m.done
	}
}

func (g *Gate) snapshotLocked() State {
	st := State{Session: g.session, FailedAttempts: g.failedAttempts}
	if g.lockedUntil != nil {
		until := *g.lockedUntil
		st.LockedUntil = &until
	}
	return st
}

func (g *Gate) notifyLocked() {
	if len(g.observers) == 0 {
		return
	}
	st := g.snapshotLocked()
	for _, o := range g.observers {
		o.fn(st)
	}
}
