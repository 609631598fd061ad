package cli

import (
	"context"
	"fmt"
	"time"

	"bilicred/internal/common"
	"bilicred/internal/credential"
	"bilicred/internal/qrlogin"
	"bilicred/internal/vault"
)

const defaultAccountName = "main"

// Login runs the QR login flow and stores the resulting credential in
// the credential file and the vault.
func (a *App) Login(ctx context.Context, args []string) error {
	name := defaultAccountName
	if len(args) > 0 {
		name = args[0]
	}

	sess, err := a.newSession()
	if err != nil {
		return err
	}

	flow := qrlogin.NewFlow(sess, a.log)
	login, err := flow.Begin(ctx)
	if err != nil {
		return err
	}

	code, err := login.QRCode()
	if err != nil {
		return err
	}
	renderQR(a.out, code)
	fmt.Fprintln(a.out, "Scan the code with the mobile app, then confirm the login.")
	fmt.Fprintln(a.out, "URL:", login.URL)

	cred, err := a.pollUntilDone(ctx, flow, login.QRCodeKey)
	if err != nil {
		return err
	}

	passphrase, err := a.askSealPassphrase()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	if err := a.saveCredential(cred, passphrase); err != nil {
		return err
	}

	v, err := vault.Open(ctx, a.config.VaultPath)
	if err != nil {
		return err
	}
	defer v.Close()
	if _, err := v.Put(ctx, name, cred); err != nil {
		return err
	}

	successColor.Fprintf(a.out, "Logged in. Credential saved to %s (vault account %q).\n",
		a.config.CredentialFile, name)
	return nil
}

// pollUntilDone polls the login attempt until it reaches a terminal
// state, reporting state changes as they happen.
func (a *App) pollUntilDone(ctx context.Context, flow *qrlogin.Flow, qrcodeKey string) (*credential.Credential, error) {
	interval := a.config.PollInterval
	if interval <= 0 {
		interval = qrlogin.DefaultPollInterval
	}

	var last qrlogin.State = -1
	for {
		res, err := flow.Poll(ctx, qrcodeKey)
		if err != nil {
			return nil, err
		}
		if res.State != last {
			fmt.Fprintln(a.out, "Status:", res.State)
			last = res.State
		}

		switch res.State {
		case qrlogin.StateSuccess:
			return res.Credential, nil
		case qrlogin.StateExpired:
			return nil, fmt.Errorf("%w: code expired before it was confirmed, run login again", common.ErrQRCode)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
