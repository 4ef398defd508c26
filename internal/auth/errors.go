package auth

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidPIN    = errors.New("incorrect PIN")
	ErrAccountLocked = errors.New("account locked")
	// ErrNetworkUnavailable is reserved for server-backed verification; the
	// local gate never returns it.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrSessionExpired means there is no usable local account and the caller
	// should route to onboarding.
	ErrSessionExpired = errors.New("session expired, please sign in again")
)

// LockedError reports an active lockout. It matches ErrAccountLocked.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: try again in %d seconds", ErrAccountLocked, e.RemainingSeconds())
}

func (e *LockedError) Unwrap() error {
	return ErrAccountLocked
}

// RemainingSeconds is the remaining lockout rounded up to whole seconds.
func (e *LockedError) RemainingSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}
