package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pingate/internal/accounts"
	"github.com/dmitrijs2005/pingate/internal/auth"
	"github.com/dmitrijs2005/pingate/internal/logging"
	"github.com/dmitrijs2005/pingate/internal/models"
	"github.com/dmitrijs2005/pingate/internal/repositories/metadata"
)

type fakeHasher struct {
	err error
}

func (h fakeHasher) Hash(pin []byte) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hash:" + string(pin), nil
}

var fakeVerifier = auth.PINVerifierFunc(func(candidate []byte, stored string) bool {
	return stored == "hash:"+string(candidate)
})

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type harness struct {
	app   *App
	gate  *auth.Gate
	repo  *metadata.MemoryRepository
	clock *testClock
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:  metadata.NewMemoryRepository(),
		clock: &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		out:   &bytes.Buffer{},
	}
	policy, err := auth.NewEscalatingPolicy(3, auth.DefaultLockoutSchedule())
	require.NoError(t, err)

	h.gate, err = auth.NewGate(context.Background(), auth.Deps{
		Store:    h.repo,
		Verifier: fakeVerifier,
		Policy:   policy,
		Now:      h.clock.Now,
	}, auth.Options{MonitorInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(h.gate.Close)

	h.app = newApp(h.gate, accounts.NewRegistry(h.repo), fakeHasher{}, logging.Discard(), strings.NewReader(""), h.out)
	return h
}

func (h *harness) enroll(t *testing.T, pin string) {
	t.Helper()
	require.NoError(t, h.gate.StoreUser(context.Background(), models.User{
		Name:       "Ada Lovelace",
		Email:      "ada@example.org",
		Age:        36,
		PINHash:    "hash:" + pin,
		Membership: models.MembershipPremium,
	}))
}

func (h *harness) unlock(t *testing.T, pin string) {
	t.Helper()
	_, err := h.gate.Authenticate(context.Background(), []byte(pin))
	require.NoError(t, err)
}

var errNoMoreInput = errors.New("no more scripted input")

// stubInputs scripts getSimpleText and getPIN with the given answers.
func stubInputs(t *testing.T, texts []string, pins []string) {
	t.Helper()
	origST, origPIN := getSimpleText, getPIN

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", errNoMoreInput
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPIN = func(_ io.Writer, _ string) ([]byte, error) {
		if len(pins) == 0 {
			return nil, errNoMoreInput
		}
		v := pins[0]
		pins = pins[1:]
		return []byte(v), nil
	}

	t.Cleanup(func() {
		getSimpleText = origST
		getPIN = origPIN
	})
}
