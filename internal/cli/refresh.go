package cli

import (
	"context"
	"fmt"

	"bilicred/internal/common"
	"bilicred/internal/credential"
	"bilicred/internal/vault"
)

// Refresh rotates the stored credential when the server asks for it.
// Without arguments it works on the credential file; with an account
// name it works on that vault entry.
func (a *App) Refresh(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return a.refreshVaultAccount(ctx, args[0])
	}

	cred, passphrase, err := a.loadCredential()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	next, rotated, err := a.runRefresh(ctx, cred)
	if err != nil {
		return err
	}
	if !rotated {
		fmt.Fprintln(a.out, "Credential is still fresh, nothing to do.")
		return nil
	}

	if err := a.saveCredential(next, passphrase); err != nil {
		return err
	}
	successColor.Fprintln(a.out, "Credential rotated and saved.")
	return nil
}

func (a *App) refreshVaultAccount(ctx context.Context, name string) error {
	v, err := vault.Open(ctx, a.config.VaultPath)
	if err != nil {
		return err
	}
	defer v.Close()

	acc, err := v.Get(ctx, name)
	if err != nil {
		return err
	}

	next, rotated, err := a.runRefresh(ctx, acc.Credential())
	if err != nil {
		return err
	}
	if !rotated {
		fmt.Fprintf(a.out, "Account %q is still fresh, nothing to do.\n", name)
		return nil
	}

	if _, err := v.Put(ctx, name, next); err != nil {
		return err
	}
	successColor.Fprintf(a.out, "Account %q rotated.\n", name)
	return nil
}

// runRefresh loads cred into a fresh session and runs the refresh flow.
// rotated is false when the server did not ask for a rotation.
func (a *App) runRefresh(ctx context.Context, cred *credential.Credential) (*credential.Credential, bool, error) {
	sess, err := a.newSession()
	if err != nil {
		return nil, false, err
	}
	if err := sess.RestoreCookies(cred.Cookies); err != nil {
		return nil, false, err
	}

	next, err := credential.NewRefresher(sess, a.log).Refresh(ctx, cred)
	if err != nil {
		return nil, false, err
	}
	return next, next != cred, nil
}
