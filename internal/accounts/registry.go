// Package accounts keeps the set of bank account ids linked on this device.
// The set lives under its own storage key and is cleared independently of
// the user record.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pingate/internal/common"
	"github.com/dmitrijs2005/pingate/internal/repositories/metadata"
)

var ErrEmptyID = errors.New("account id must not be empty")

type Registry struct {
	mu   sync.Mutex
	repo metadata.Repository
}

func NewRegistry(repo metadata.Repository) *Registry {
	return &Registry{repo: repo}
}

// NewID returns a fresh id for an account linked without one.
func NewID() string {
	return uuid.NewString()
}

// Link adds id to the set. It reports whether the id was new.
func (r *Registry) Link(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	pos, found := slices.BinarySearch(ids, id)
	if found {
		return false, nil
	}
	ids = slices.Insert(ids, pos, id)
	return true, r.save(ctx, ids)
}

// Unlink removes id from the set. It reports whether the id was present.
func (r *Registry) Unlink(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	pos, found := slices.BinarySearch(ids, id)
	if !found {
		return false, nil
	}
	ids = slices.Delete(ids, pos, pos+1)
	if len(ids) == 0 {
		return true, r.clear(ctx)
	}
	return true, r.save(ctx, ids)
}

// List returns the linked ids in sorted order.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// Clear forgets every linked id.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.clear(ctx)
}

func (r *Registry) load(ctx context.Context) ([]string, error) {
	raw, err := r.repo.Get(ctx, common.LinkedAccountsKey)
	if err != nil {
		return nil, fmt.Errorf("load linked accounts: %w", err)
	}
	if len(raw) == 0 {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode linked accounts: %w", err)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r *Registry) save(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := r.repo.Set(ctx, common.LinkedAccountsKey, data); err != nil {
		return fmt.Errorf("save linked accounts: %w", err)
	}
	return nil
}

func (r *Registry) clear(ctx context.Context) error {
	if err := r.repo.Delete(ctx, common.LinkedAccountsKey); err != nil {
		return fmt.Errorf("clear linked accounts: %w", err)
	}
	return nil
}
