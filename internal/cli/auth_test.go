package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pingate/internal/auth"
	"github.com/dmitrijs2005/pingate/internal/cryptox"
	"github.com/dmitrijs2005/pingate/internal/models"
)

func TestEnroll_Success(t *testing.T) {
	h := newHarness(t)
	stubInputs(t,
		[]string{"Ada Lovelace", "Ada <ada@example.org>", "36", "+44 20 7946 0000", "plus", "Moderate", "10", "retirement, house"},
		[]string{"2468", "2468"},
	)

	require.NoError(t, h.app.Enroll(context.Background()))

	name, ok := h.gate.StoredUserName(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", name)
	email, _ := h.gate.StoredUserEmail(context.Background())
	assert.Equal(t, "ada@example.org", email)
	assert.Contains(t, h.out.String(), "Account for ada@example.org created")

	u, err := h.gate.Authenticate(context.Background(), []byte("2468"))
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPlus, u.Membership)
	require.NotNil(t, u.InvestorProfile)
	assert.Equal(t, "moderate", u.InvestorProfile.RiskTolerance)
	assert.Equal(t, []string{"retirement", "house"}, u.InvestorProfile.Goals)
}

func TestEnroll_SkipsInvestorProfile(t *testing.T) {
	h := newHarness(t)
	stubInputs(t, []string{"Ada", "ada@example.org", "36", "", "", ""}, []string{"1234", "1234"})

	require.NoError(t, h.app.Enroll(context.Background()))

	u, err := h.gate.Authenticate(context.Background(), []byte("1234"))
	require.NoError(t, err)
	assert.Nil(t, u.InvestorProfile)
	assert.Equal(t, models.MembershipFree, u.Membership)
}

func TestEnroll_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		texts   []string
		pins    []string
		wantErr error
	}{
		{name: "bad pin", texts: []string{"Ada", "ada@example.org", "36", "", "", ""}, pins: []string{"12ab"}, wantErr: cryptox.ErrInvalidPINFormat},
		{name: "short pin", texts: []string{"Ada", "ada@example.org", "36", "", "", ""}, pins: []string{"123"}, wantErr: cryptox.ErrInvalidPINFormat},
		{name: "mismatch", texts: []string{"Ada", "ada@example.org", "36", "", "", ""}, pins: []string{"1234", "4321"}, wantErr: errPINMismatch},
		{name: "empty name", texts: []string{""}},
		{name: "bad email", texts: []string{"Ada", "not-an-email"}},
		{name: "bad age", texts: []string{"Ada", "ada@example.org", "old"}},
		{name: "bad tier", texts: []string{"Ada", "ada@example.org", "36", "", "gold"}},
		{name: "bad horizon", texts: []string{"Ada", "ada@example.org", "36", "", "", "moderate", "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			stubInputs(t, tt.texts, tt.pins)

			err := h.app.Enroll(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, h.gate.HasStoredUser(context.Background()))
		})
	}
}

func TestEnroll_AlreadyEnrolled(t *testing.T) {
	h := newHarness(t)
	h.enroll(t, "1234")

	err := h.app.Enroll(context.Background())
	require.ErrorIs(t, err, errAlreadyEnrolled)
}

func TestEnroll_HashError(t *testing.T) {
	h := newHarness(t)
	h.app.hasher = fakeHasher{err: errors.New("no entropy")}
	stubInputs(t, []string{"Ada", "ada@example.org", "36", "", "", ""}, []string{"1234", "1234"})

	require.Error(t, h.app.Enroll(context.Background()))
	assert.False(t, h.gate.HasStoredUser(context.Background()))
}

func TestUnlock_Flow(t *testing.T) {
	h := newHarness(t)
	h.enroll(t, "1234")
	ctx := context.Background()
	stubInputs(t, nil, []string{"0000", "0000", "0000", "1234", "1234"})

	require.ErrorIs(t, h.app.Unlock(ctx), auth.ErrInvalidPIN)
	assert.Contains(t, h.out.String(), "2 attempt(s) left")

	require.ErrorIs(t, h.app.Unlock(ctx), auth.ErrInvalidPIN)
	require.ErrorIs(t, h.app.Unlock(ctx), auth.ErrAccountLocked)
	assert.Contains(t, h.out.String(), "Try again in 30 seconds")
	assert.Equal(t, "locked 30s", h.app.getStatus())

	// still locked: no PIN prompt is consumed
	require.ErrorIs(t, h.app.Unlock(ctx), auth.ErrAccountLocked)

	h.clock.now = h.clock.now.Add(31 * time.Second)
	require.NoError(t, h.app.Unlock(ctx))
	assert.Contains(t, h.out.String(), "Welcome back, Ada Lovelace!")
	assert.True(t, h.app.isUnlocked())
	assert.Equal(t, "ada@example.org", h.app.getStatus())
}

func TestUnlock_NoAccount(t *testing.T) {
	h := newHarness(t)
	stubInputs(t, nil, []string{"1234"})

	require.ErrorIs(t, h.app.Unlock(context.Background()), auth.ErrSessionExpired)
	assert.Contains(t, h.out.String(), "Type 'enroll'")
}

func TestWhoAmIAndLogout(t *testing.T) {
	h := newHarness(t)
	h.enroll(t, "1234")
	ctx := context.Background()

	require.ErrorIs(t, h.app.WhoAmI(ctx), errNotUnlocked)

	h.unlock(t, "1234")
	require.NoError(t, h.app.WhoAmI(ctx))
	assert.Contains(t, h.out.String(), "Email: ada@example.org")
	assert.Contains(t, h.out.String(), "Membership: premium")

	require.NoError(t, h.app.Logout(ctx))
	assert.False(t, h.app.isUnlocked())
	assert.Equal(t, "signed out", h.app.getStatus())
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.app.Status(ctx))
	assert.Contains(t, h.out.String(), "Account: none")
	assert.Contains(t, h.out.String(), "Attempts left: 3")

	h.enroll(t, "1234")
	for i := 0; i < 3; i++ {
		_, _ = h.gate.Authenticate(ctx, []byte("9999"))
	}
	h.out.Reset()
	require.NoError(t, h.app.Status(ctx))
	assert.Contains(t, h.out.String(), "Account: Ada Lovelace")
	assert.Contains(t, h.out.String(), "Session: locked")
	assert.Contains(t, h.out.String(), "Locked for another 30 seconds")
}

func TestLockoutWatcher(t *testing.T) {
	h := newHarness(t)
	h.enroll(t, "1234")
	ctx := context.Background()

	unsubscribe := h.gate.Subscribe(h.app.lockoutWatcher())
	defer unsubscribe()

	for i := 0; i < 3; i++ {
		_, _ = h.gate.Authenticate(ctx, []byte("9999"))
	}
	assert.NotContains(t, h.out.String(), "Lockout expired")

	h.clock.now = h.clock.now.Add(time.Minute)
	assert.False(t, h.gate.IsLockedOut())
	assert.Contains(t, h.out.String(), "Lockout expired")
}
