package cli

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pingate/internal/auth"
	"github.com/dmitrijs2005/pingate/internal/common"
	"github.com/dmitrijs2005/pingate/internal/cryptox"
	"github.com/dmitrijs2005/pingate/internal/models"
)

var (
	errNotUnlocked     = errors.New("unlock first")
	errAlreadyEnrolled = errors.New("an account is already enrolled on this device")
	errPINMismatch     = errors.New("PINs do not match")
	errAborted         = errors.New("aborted")
)

// Status prints the session, the attempts left and any running lockout.
func (a *App) Status(ctx context.Context) error {
	st := a.gate.State()

	name, enrolled := a.gate.StoredUserName(ctx)
	if enrolled {
		fmt.Fprintf(a.out, "Account: %s\n", name)
	} else {
		fmt.Fprintln(a.out, "Account: none")
	}
	fmt.Fprintf(a.out, "Session: %s\n", st.Session.Kind)

	if secs, locked := a.gate.LockoutSecondsRemaining(); locked {
		fmt.Fprintf(a.out, "Locked for another %d seconds\n", secs)
	} else {
		fmt.Fprintf(a.out, "Attempts left: %d\n", a.gate.RemainingAttempts())
	}
	return nil
}

// Enroll collects the account details and a new PIN and stores the account.
// The PIN is hashed before it leaves this function and both copies are wiped.
func (a *App) Enroll(ctx context.Context) error {
	if a.gate.HasStoredUser(ctx) {
		fmt.Fprintln(a.out, "An account is already enrolled. Use 'reset' to start over.")
		return errAlreadyEnrolled
	}

	u, err := a.promptProfile()
	if err != nil {
		fmt.Fprintf(a.out, "Enrollment cancelled: %s\n", err)
		return err
	}

	pin, err := getPIN(a.out, "Choose a PIN (4-8 digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := cryptox.ValidatePIN(pin); err != nil {
		fmt.Fprintln(a.out, "PIN must be 4 to 8 digits.")
		return err
	}

	confirm, err := getPIN(a.out, "Repeat the PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pin) != string(confirm) {
		fmt.Fprintln(a.out, "PINs do not match.")
		return errPINMismatch
	}

	u.PINHash, err = a.hasher.Hash(pin)
	if err != nil {
		a.logger.Error(ctx, "pin hashing failed", "error", err)
		return err
	}

	if err := a.gate.StoreUser(ctx, u); err != nil {
		a.logger.Error(ctx, "storing account failed", "error", err)
		fmt.Fprintln(a.out, "Could not save the account.")
		return err
	}

	fmt.Fprintf(a.out, "Account for %s created. Type 'unlock' to sign in.\n", u.Email)
	return nil
}

func (a *App) promptProfile() (models.User, error) {
	var u models.User

	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return u, err
	}
	if name == "" {
		return u, errors.New("name is required")
	}
	u.Name = name

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return u, err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return u, fmt.Errorf("invalid email: %w", err)
	}
	u.Email = addr.Address

	ageText, err := getSimpleText(a.reader, "Age", a.out)
	if err != nil {
		return u, err
	}
	u.Age, err = strconv.Atoi(ageText)
	if err != nil || u.Age < 0 {
		return u, fmt.Errorf("invalid age %q", ageText)
	}

	if u.Phone, err = getSimpleText(a.reader, "Phone (optional)", a.out); err != nil {
		return u, err
	}

	tier, err := getSimpleText(a.reader, "Membership (free, plus, premium)", a.out)
	if err != nil {
		return u, err
	}
	if u.Membership, err = models.ParseMembershipTier(tier); err != nil {
		return u, err
	}

	risk, err := getSimpleText(a.reader, "Risk tolerance (conservative, moderate, aggressive; empty to skip)", a.out)
	if err != nil {
		return u, err
	}
	if risk != "" {
		horizonText, err := getSimpleText(a.reader, "Investment horizon in years", a.out)
		if err != nil {
			return u, err
		}
		horizon, err := strconv.Atoi(horizonText)
		if err != nil || horizon < 0 {
			return u, fmt.Errorf("invalid horizon %q", horizonText)
		}
		goals, err := getSimpleText(a.reader, "Goals, comma separated (optional)", a.out)
		if err != nil {
			return u, err
		}
		u.InvestorProfile = &models.InvestorProfile{
			RiskTolerance: strings.ToLower(risk),
			HorizonYears:  horizon,
			Goals:         splitList(goals),
		}
	}

	return u, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Unlock prompts for the PIN and reports the gate's verdict.
func (a *App) Unlock(ctx context.Context) error {
	if secs, locked := a.gate.LockoutSecondsRemaining(); locked {
		fmt.Fprintf(a.out, "Too many attempts. Try again in %d seconds.\n", secs)
		return auth.ErrAccountLocked
	}

	pin, err := getPIN(a.out, "Enter PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	u, err := a.gate.Authenticate(ctx, pin)

	var locked *auth.LockedError
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.Name)
	case errors.As(err, &locked):
		fmt.Fprintf(a.out, "Too many attempts. Try again in %d seconds.\n", locked.RemainingSeconds())
	case errors.Is(err, auth.ErrInvalidPIN):
		fmt.Fprintf(a.out, "Incorrect PIN. %d attempt(s) left before lockout.\n", a.gate.RemainingAttempts())
	case errors.Is(err, auth.ErrSessionExpired):
		fmt.Fprintln(a.out, "No account on this device. Type 'enroll' to set one up.")
	default:
		fmt.Fprintf(a.out, "Unlock failed: %s\n", err)
	}
	return err
}

// WhoAmI prints the unlocked account.
func (a *App) WhoAmI(context.Context) error {
	u, ok := a.gate.AuthenticatedUser()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return errNotUnlocked
	}

	fmt.Fprintf(a.out, "Name: %s\nEmail: %s\nMembership: %s\n", u.Name, u.Email, u.Membership)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "Phone: %s\n", u.Phone)
	}
	if p := u.InvestorProfile; p != nil {
		fmt.Fprintf(a.out, "Risk tolerance: %s, horizon %d years\n", p.RiskTolerance, p.HorizonYears)
	}
	return nil
}

// Logout ends the session. The attempt counter and the account stay.
func (a *App) Logout(context.Context) error {
	a.gate.Logout()
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
