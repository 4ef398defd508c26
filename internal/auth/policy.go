package auth

import (
	"errors"
	"slices"
	"time"
)

// PINVerifier checks a candidate PIN against a stored hash. Constant-time
// comparison is the implementation's job.
type PINVerifier interface {
	Verify(candidate []byte, storedHash string) bool
}

// PINVerifierFunc adapts a function to PINVerifier.
type PINVerifierFunc func(candidate []byte, storedHash string) bool

func (f PINVerifierFunc) Verify(candidate []byte, storedHash string) bool {
	return f(candidate, storedHash)
}

// LockoutPolicy maps a failed-attempt count to a lockout duration. It must be
// non-decreasing in failedAttempts; zero means no lockout.
type LockoutPolicy interface {
	LockoutDuration(failedAttempts int) time.Duration
}

// LockoutPolicyFunc adapts a function to LockoutPolicy.
type LockoutPolicyFunc func(failedAttempts int) time.Duration

func (f LockoutPolicyFunc) LockoutDuration(failedAttempts int) time.Duration {
	return f(failedAttempts)
}

// DefaultLockoutSchedule is used when configuration does not provide one.
func DefaultLockoutSchedule() []time.Duration {
	return []time.Duration{30 * time.Second, time.Minute, 5 * time.Minute, 15 * time.Minute}
}

// EscalatingPolicy locks for schedule[0] at the threshold, schedule[1] one
// attempt later and so on, staying at the last step afterwards.
//
// The gate resets the counter when a lockout expires and does not count
// attempts made while locked, so in normal operation only schedule[0] is
// used. Later steps apply when the counter is already at or past the
// threshold without a deadline, such as after a reload that finds a counter
// but no persisted deadline, or when schedule[0] is zero.
type EscalatingPolicy struct {
	threshold int
	schedule  []time.Duration
}

func NewEscalatingPolicy(threshold int, schedule []time.Duration) (*EscalatingPolicy, error) {
	if threshold <= 0 {
		return nil, errors.New("lockout threshold must be positive")
	}
	if len(schedule) == 0 {
		return nil, errors.New("lockout schedule must not be empty")
	}
	steps := slices.Clone(schedule)
	for _, d := range steps {
		if d < 0 {
			return nil, errors.New("lockout durations must not be negative")
		}
	}
	slices.Sort(steps)
	return &EscalatingPolicy{threshold: threshold, schedule: steps}, nil
}

func (p *EscalatingPolicy) LockoutDuration(failedAttempts int) time.Duration {
	if failedAttempts < p.threshold {
		return 0
	}
	step := failedAttempts - p.threshold
	if step >= len(p.schedule) {
		step = len(p.schedule) - 1
	}
	return p.schedule[step]
}
