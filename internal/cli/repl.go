package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Status(ctx context.Context) error
	Enroll(ctx context.Context) error
	Unlock(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
	Link(ctx context.Context, args []string) error
	Unlink(ctx context.Context, args []string) error
	Accounts(ctx context.Context) error
	Clear(ctx context.Context) error
	Forget(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// Prompts read from the same reader, so scripted input stays in order.
//
//	Locked or signed out:
//	  - help            show available commands
//	  - status          session, attempts left, lockout timer
//	  - enroll          create the device account
//	  - unlock          enter the PIN
//	  - forget          delete the stored account
//	  - reset           erase all local data
//	  - exit | quit     leave the program
//
//	Unlocked, additionally:
//	  - whoami          show the account
//	  - link [id]       link a bank account (new id when omitted)
//	  - unlink <id>     unlink a bank account
//	  - accounts        list linked accounts
//	  - clear           sign out and reset the attempt counter
//	  - logout          sign out
//
// Handlers report their own outcome; errors they return are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pingate (%s) > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: status, whoami, link [id], unlink <id>, accounts, clear, logout, forget, reset, exit")
			} else {
				printlnFn("Available commands: status, enroll, unlock, forget, reset, exit")
			}

		case "status":
			_ = a.Status(ctx)

		case "enroll":
			_ = a.Enroll(ctx)

		case "unlock", "login":
			_ = a.Unlock(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "link":
			_ = a.Link(ctx, args)

		case "unlink":
			_ = a.Unlink(ctx, args)

		case "accounts":
			_ = a.Accounts(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "forget":
			_ = a.Forget(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
