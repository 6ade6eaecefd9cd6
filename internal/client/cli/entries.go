package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophvault/internal/models"
)

const passwordMask = "********"

var errUsage = errors.New("usage")

// List prints all entries. Passwords are masked unless args contain -p.
func (a *App) List(ctx context.Context, args []string) error {
	show := len(args) > 0 && (args[0] == "-p" || args[0] == "--show")

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	entries, err := a.client.ListEntries(ctx)
	if err != nil {
		a.printError(err)
		a.checkSession(err)
		return err
	}

	if len(entries) == 0 {
		a.printf("No entries\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSITE\tUSERNAME\tPASSWORD\tURL\tUPDATED")
	for _, e := range entries {
		pw := passwordMask
		if show {
			pw = e.Password
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Category, e.Site, e.Username, pw, e.URL, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if show {
		for _, e := range entries {
			if e.Notes != "" {
				a.printf("\n[%s] notes:\n%s\n", e.ID, e.Notes)
			}
		}
	}
	return nil
}

// Add prompts for a new entry. An empty password is replaced with a
// generated one.
func (a *App) Add(ctx context.Context) error {
	var in models.EntryInput
	var err error

	prompts := []struct {
		dst    *string
		prompt string
	}{
		{&in.Category, "Category (" + categoryList() + ", default General)"},
		{&in.Site, "Site"},
		{&in.URL, "URL (optional)"},
		{&in.Username, "Username"},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.prompt, a.out); err != nil {
			return err
		}
	}

	pw, err := getPassword(a.reader, "Password (empty to generate)", a.out)
	if err != nil {
		return err
	}
	in.Password = string(pw)

	if in.Notes, err = GetMultiline(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if in.Password == "" {
		if in.Password, err = a.client.GeneratePassword(ctx, nil); err != nil {
			a.printError(err)
			return err
		}
		a.printf("Generated password: %s\n", in.Password)
	}

	e, err := a.client.CreateEntry(ctx, in)
	if err != nil {
		a.printError(err)
		a.checkSession(err)
		return err
	}

	a.printf("Entry %s added\n", e.ID)
	return nil
}

// Edit prompts for every field; an empty answer keeps the current value.
// For notes "-" clears them.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: edit <id>\n")
		return errUsage
	}
	id := args[0]

	var upd models.EntryUpdate
	fields := []struct {
		dst    **string
		prompt string
	}{
		{&upd.Category, "Category"},
		{&upd.Site, "Site"},
		{&upd.URL, "URL"},
		{&upd.Username, "Username"},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt+" (empty keeps current)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	pw, err := getPassword(a.reader, "Password (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if len(pw) > 0 {
		s := string(pw)
		upd.Password = &s
	}

	notes, err := GetMultiline(a.reader, "Notes (empty keeps current, '-' clears)", a.out)
	if err != nil {
		return err
	}
	switch notes {
	case "":
	case "-":
		empty := ""
		upd.Notes = &empty
	default:
		upd.Notes = &notes
	}

	if upd.Empty() {
		a.printf("Nothing to change\n")
		return nil
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	e, err := a.client.UpdateEntry(ctx, id, upd)
	if err != nil {
		a.printError(err)
		a.checkSession(err)
		return err
	}

	a.printf("Entry %s updated\n", e.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: delete <id>\n")
		return errUsage
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if err := a.client.DeleteEntry(ctx, args[0]); err != nil {
		a.printError(err)
		a.checkSession(err)
		return err
	}
	a.printf("Entry %s deleted\n", args[0])
	return nil
}

func categoryList() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
