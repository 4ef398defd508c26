package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pingate/internal/common"
	"github.com/dmitrijs2005/pingate/internal/logging"
	"github.com/dmitrijs2005/pingate/internal/models"
	"github.com/dmitrijs2005/pingate/internal/observability"
	"github.com/dmitrijs2005/pingate/internal/repositories/metadata"
)

// stateStore is the gate's view of the key/value store. Failures on the
// counter, deadline and erase paths are logged and reported, never returned:
// in-memory state keeps advancing when the store is unavailable.
type stateStore struct {
	repo   metadata.Repository
	logger logging.Logger
}

func (s *stateStore) report(ctx context.Context, op, key string, err error) {
	s.logger.Warn(ctx, "persistence failure", "operation", op, "key", key, "error", err)
	observability.CaptureError(err, map[string]string{"operation": op, "key": key})
}

func (s *stateStore) loadAttempts(ctx context.Context) int {
	raw, err := s.repo.Get(ctx, common.FailedAttemptsKey)
	if err != nil {
		s.report(ctx, "load", common.FailedAttemptsKey, err)
		return 0
	}
	if raw == nil {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		s.logger.Warn(ctx, "ignoring malformed attempt counter", "value", string(raw))
		return 0
	}
	return n
}

func (s *stateStore) saveAttempts(ctx context.Context, n int) {
	if err := s.repo.Set(ctx, common.FailedAttemptsKey, []byte(strconv.Itoa(n))); err != nil {
		s.report(ctx, "save", common.FailedAttemptsKey, err)
	}
}

func (s *stateStore) loadDeadline(ctx context.Context) *time.Time {
	raw, err := s.repo.Get(ctx, common.LockoutUntilKey)
	if err != nil {
		s.report(ctx, "load", common.LockoutUntilKey, err)
		return nil
	}
	if raw == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		s.logger.Warn(ctx, "ignoring malformed lockout deadline", "value", string(raw))
		return nil
	}
	return &t
}

// saveDeadline writes until, or removes the key when until is nil.
func (s *stateStore) saveDeadline(ctx context.Context, until *time.Time) {
	if until == nil {
		s.erase(ctx, common.LockoutUntilKey)
		return
	}
	value := []byte(until.UTC().Format(time.RFC3339Nano))
	if err := s.repo.Set(ctx, common.LockoutUntilKey, value); err != nil {
		s.report(ctx, "save", common.LockoutUntilKey, err)
	}
}

func (s *stateStore) erase(ctx context.Context, key string) {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.report(ctx, "delete", key, err)
	}
}

// loadUser returns the stored account. Missing, unreadable and undecodable
// records all read as absent.
func (s *stateStore) loadUser(ctx context.Context) (models.User, bool) {
	raw, err := s.repo.Get(ctx, common.StoredUserKey)
	if err != nil {
		s.report(ctx, "load", common.StoredUserKey, err)
		return models.User{}, false
	}
	if raw == nil {
		return models.User{}, false
	}
	u, err := models.DecodeUser(raw)
	if err != nil {
		s.logger.Warn(ctx, "stored user record unreadable", "error", err)
		return models.User{}, false
	}
	return u, true
}

func (s *stateStore) saveUser(ctx context.Context, u models.User) error {
	data, err := models.EncodeUser(u)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, common.StoredUserKey, data)
}
