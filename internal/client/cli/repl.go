package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	Setup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Generate(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
}

const (
	helpLocked   = "Available commands: status, setup, login, generate, help, exit"
	helpUnlocked = "Available commands: status, (l)ist [-p], add, edit <id>, delete <id>, generate [length] [-nosymbols], backup, logout, help, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit". Handler
// errors are printed by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gophvault %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpUnlocked)
			} else {
				fmt.Fprintln(w, helpLocked)
			}
		case "status":
			_ = a.Status(ctx)
		case "setup":
			_ = a.Setup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "l", "list":
			_ = a.List(ctx, args)
		case "add":
			_ = a.Add(ctx)
		case "edit":
			_ = a.Edit(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "generate":
			_ = a.Generate(ctx, args)
		case "backup":
			_ = a.Backup(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
