package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errPassphraseMismatch = errors.New("passphrases do not match")

func (a *App) Status(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	st, err := a.client.Status(ctx)
	if err != nil {
		a.printError(err)
		return err
	}

	if !st.Initialized {
		a.printf("Vault is not initialized, run 'setup' to create it\n")
		return nil
	}
	if st.State != "unlocked" {
		a.loggedIn = false
	}
	a.printf("Vault is %s", st.State)
	if st.ExpiresAt != nil {
		a.printf(" until %s", st.ExpiresAt.Local().Format("15:04:05"))
	}
	a.printf("\n")
	return nil
}

// Setup creates the vault with a new master passphrase, asking twice.
func (a *App) Setup(ctx context.Context) error {
	passphrase, err := getPassword(a.reader, "New master passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	confirm, err := getPassword(a.reader, "Repeat master passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(passphrase) != string(confirm) {
		a.printError(errPassphraseMismatch)
		return errPassphraseMismatch
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if err := a.client.Setup(ctx, string(passphrase)); err != nil {
		a.printError(err)
		return err
	}

	a.loggedIn = true
	a.printf("Vault created and unlocked\n")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	passphrase, err := getPassword(a.reader, "Master passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	if err := a.client.Login(ctx, string(passphrase)); err != nil {
		a.printError(err)
		return err
	}

	a.loggedIn = true
	a.printf("Vault unlocked\n")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	a.loggedIn = false
	if err := a.client.Logout(ctx); err != nil {
		a.printError(err)
		return err
	}
	a.printf("Vault locked\n")
	return nil
}

// checkSession drops the local logged-in flag when the daemon reports the
// session is gone.
func (a *App) checkSession(err error) {
	if errors.Is(err, common.ErrSessionLocked) || errors.Is(err, common.ErrInvalidToken) {
		a.loggedIn = false
		a.printf("Session has ended, please login again\n")
	}
}
