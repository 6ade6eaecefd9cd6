package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophvault/internal/client/client"
	"github.com/dmitrijs2005/gophvault/internal/client/config"
)

type App struct {
	config   *config.Config
	client   client.Client
	reader   *bufio.Reader
	out      io.Writer
	loggedIn bool
}

func NewApp(c *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: api, reader: bufio.NewReader(in), out: out}
}

// Run shows the vault status and starts the REPL. The session is locked
// when the user leaves.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to GophVault CLI (type 'help' for commands)")
	_ = a.Status(ctx)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	if a.loggedIn {
		_ = a.Logout(ctx)
	}
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

func (a *App) getStatus() string {
	if a.loggedIn {
		return "(unlocked)"
	}
	return "(locked)"
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printError(err error) {
	a.printf("Error: %s\n", err.Error())
}
