package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pingate/internal/accounts"
)

// Link adds a bank account id to the linked set. Without an argument a new
// id is generated.
func (a *App) Link(ctx context.Context, args []string) error {
	if !a.isUnlocked() {
		fmt.Fprintln(a.out, "Unlock first.")
		return errNotUnlocked
	}

	id := accounts.NewID()
	if len(args) > 0 {
		id = args[0]
	}

	added, err := a.accounts.Link(ctx, id)
	if err != nil {
		a.logger.Error(ctx, "link account failed", "error", err)
		fmt.Fprintf(a.out, "Could not link account: %s\n", err)
		return err
	}
	if !added {
		fmt.Fprintf(a.out, "Account %s is already linked.\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Linked account %s.\n", id)
	return nil
}

// Unlink removes a bank account id from the linked set.
func (a *App) Unlink(ctx context.Context, args []string) error {
	if !a.isUnlocked() {
		fmt.Fprintln(a.out, "Unlock first.")
		return errNotUnlocked
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: unlink <id>")
		return nil
	}

	removed, err := a.accounts.Unlink(ctx, args[0])
	if err != nil {
		a.logger.Error(ctx, "unlink account failed", "error", err)
		fmt.Fprintf(a.out, "Could not unlink account: %s\n", err)
		return err
	}
	if !removed {
		fmt.Fprintf(a.out, "Account %s is not linked.\n", args[0])
		return nil
	}
	fmt.Fprintf(a.out, "Unlinked account %s.\n", args[0])
	return nil
}

// Accounts lists the linked ids.
func (a *App) Accounts(ctx context.Context) error {
	if !a.isUnlocked() {
		fmt.Fprintln(a.out, "Unlock first.")
		return errNotUnlocked
	}

	ids, err := a.accounts.List(ctx)
	if err != nil {
		a.logger.Error(ctx, "list accounts failed", "error", err)
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No linked accounts.")
		return nil
	}
	for i, id := range ids {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, id)
	}
	return nil
}
