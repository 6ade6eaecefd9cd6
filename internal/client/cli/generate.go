package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/gophvault/internal/generator"
)

// Generate prints a new password. Args: an optional length and any of
// -noupper, -nolower, -nodigits, -nosymbols.
func (a *App) Generate(ctx context.Context, args []string) error {
	p := generator.DefaultPolicy()

	for _, arg := range args {
		switch arg {
		case "-noupper":
			p.UseUpper = false
		case "-nolower":
			p.UseLower = false
		case "-nodigits":
			p.UseDigits = false
		case "-nosymbols":
			p.UseSymbols = false
		default:
			n, err := strconv.Atoi(arg)
			if err != nil {
				a.printf("Usage: generate [length] [-noupper] [-nolower] [-nodigits] [-nosymbols]\n")
				return errUsage
			}
			p.Length = n
		}
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	pw, err := a.client.GeneratePassword(ctx, &p)
	if err != nil {
		a.printError(err)
		return err
	}
	a.printf("%s\n", pw)
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	res, err := a.client.Backup(ctx)
	if err != nil {
		a.printError(err)
		a.checkSession(err)
		return err
	}

	a.printf("Backed up %d entries to %s (%d bytes)\n", res.Entries, res.Path, res.Size)
	if res.Key != "" {
		a.printf("Uploaded as %s\n", res.Key)
	}
	return nil
}
