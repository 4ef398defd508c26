package auth

import (
	"context"
	"time"
)

// lockoutMonitor is the handle of the goroutine that refreshes a Locked
// session once its deadline passes. The gate owns at most one.
type lockoutMonitor struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startMonitorLocked replaces any running monitor. g.mu must be held.
func (g *Gate) startMonitorLocked() {
	g.stopMonitorLocked()
	if g.closed {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &lockoutMonitor{cancel: cancel, done: make(chan struct{})}
	g.monitor = m
	go g.watchLockout(ctx, m)
}

// stopMonitorLocked cancels the running monitor without waiting for it.
// g.mu must be held.
func (g *Gate) stopMonitorLocked() {
	if g.monitor == nil {
		return
	}
	g.monitor.cancel()
	g.monitor = nil
}

func (g *Gate) watchLockout(ctx context.Context, m *lockoutMonitor) {
	defer close(m.done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mu.Lock()
			if ctx.Err() != nil {
				// stopped while waiting for the lock
				g.mu.Unlock()
				return
			}
			// the monitor's own context is cancelled by the expiry it triggers
			_, locked := g.lockRemainingLocked(context.Background(), g.now())
			g.mu.Unlock()
			if !locked {
				return
			}
		}
	}
}
