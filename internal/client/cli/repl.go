package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	access() access
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Profile(ctx context.Context) error
	Refresh(ctx context.Context) error
	Brands(ctx context.Context) error
	CreateBrand(ctx context.Context, name string) error
	RenameBrand(ctx context.Context, id, name string) error
	SelectBrand(ctx context.Context, id string) error
	Social(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, status, exit"
	helpSession   = "Available commands: profile, refresh, brands, brand-create <name>, brand-rename <id> <name>, brand-select <id>, social, status, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the mdash CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Handlers prompt through the same reader, so
// no input is buffered away from them. Unknown commands are reported back to
// the user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help                       show available commands
//	  - status                     session state and current brand
//	  - exit | quit                leave the program
//
//	Not logged in:
//	  - register                   create an account
//	  - login                      authenticate
//
//	Logged in (checked by guard):
//	  - profile                    show the business profile
//	  - refresh                    refetch the profile
//	  - brands                     list brands, current one marked
//	  - brand-create <name>        create and name a brand
//	  - brand-rename <id> <name>   rename a brand
//	  - brand-select <id>          make a brand current
//	  - social                     social connections of the current brand
//	  - logout                     log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mdash%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.access() == accessAllow {
				printlnFn(helpSession)
			} else {
				printlnFn(helpAnonymous)
			}

		case "status":
			_ = a.Status(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout", "profile", "refresh", "brands", "brand-create", "brand-rename", "brand-select", "social":
			if !allowed(a) {
				continue
			}
			runProtected(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// allowed applies the route guard and tells the user why a command is held.
func allowed(a execIface) bool {
	switch a.access() {
	case accessAllow:
		return true
	case accessWait:
		printlnFn("Loading session, please wait...")
	case accessRedirect:
		printlnFn("You are not logged in. Type 'login' to continue.")
	}
	return false
}

func runProtected(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "logout":
		_ = a.Logout(ctx)

	case "profile":
		_ = a.Profile(ctx)

	case "refresh":
		_ = a.Refresh(ctx)

	case "brands":
		_ = a.Brands(ctx)

	case "brand-create":
		if len(args) == 0 {
			printlnFn("Usage: brand-create <name>")
			return
		}
		_ = a.CreateBrand(ctx, strings.Join(args, " "))

	case "brand-rename":
		if len(args) < 2 {
			printlnFn("Usage: brand-rename <id> <name>")
			return
		}
		_ = a.RenameBrand(ctx, args[0], strings.Join(args[1:], " "))

	case "brand-select":
		if len(args) != 1 {
			printlnFn("Usage: brand-select <id>")
			return
		}
		_ = a.SelectBrand(ctx, args[0])

	case "social":
		_ = a.Social(ctx)
	}
}
