package cli

import (
	"context"
	"fmt"
	"strings"
)

// Clear signs out and resets the attempt counter. It needs an unlocked
// session so it cannot be used to skip a lockout.
func (a *App) Clear(ctx context.Context) error {
	if !a.isUnlocked() {
		fmt.Fprintln(a.out, "Unlock first.")
		return errNotUnlocked
	}
	a.gate.ClearState(ctx)
	fmt.Fprintln(a.out, "Session cleared.")
	return nil
}

// Forget deletes the stored account after confirmation. A running lockout
// stays in force.
func (a *App) Forget(ctx context.Context) error {
	if !a.gate.HasStoredUser(ctx) {
		fmt.Fprintln(a.out, "No account on this device.")
		return nil
	}
	if err := a.confirm("Delete the account stored on this device? Type 'yes' to confirm", "yes"); err != nil {
		return err
	}
	a.gate.ClearStoredUser(ctx)
	fmt.Fprintln(a.out, "Account removed from this device.")
	return nil
}

// Reset erases the account, the lockout state and the linked accounts.
func (a *App) Reset(ctx context.Context) error {
	if err := a.confirm("Erase ALL local data? Type 'RESET' to confirm", "RESET"); err != nil {
		return err
	}
	a.gate.ResetAllLocalState(ctx)
	fmt.Fprintln(a.out, "All local data erased.")
	return nil
}

func (a *App) confirm(prompt, want string) error {
	answer, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != want {
		fmt.Fprintln(a.out, "Cancelled.")
		return errAborted
	}
	return nil
}
