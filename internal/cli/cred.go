package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"bilicred/internal/credential"
	"bilicred/internal/credfile"
)

// loadCredential reads the configured credential file, prompting for a
// passphrase when it is sealed. The returned passphrase is non-nil only
// for sealed files; the caller wipes it after any save-back.
func (a *App) loadCredential() (*credential.Credential, []byte, error) {
	path := a.config.CredentialFile

	sealed, err := credfile.IsSealed(path)
	if err != nil {
		return nil, nil, fmt.Errorf("no usable credential at %s (run login first): %w", path, err)
	}

	if !sealed {
		cred, err := credfile.Load(path)
		return cred, nil, err
	}

	passphrase, err := GetPassword(a.out, "Enter passphrase: ")
	if err != nil {
		return nil, nil, err
	}
	cred, err := credfile.LoadSealed(path, passphrase)
	if err != nil {
		return nil, nil, err
	}
	return cred, passphrase, nil
}

// saveCredential writes cred to the configured path, sealed when a
// passphrase is given.
func (a *App) saveCredential(cred *credential.Credential, passphrase []byte) error {
	if len(passphrase) > 0 {
		return credfile.SaveSealed(a.config.CredentialFile, cred, passphrase)
	}
	return credfile.Save(a.config.CredentialFile, cred)
}

// askSealPassphrase offers to protect a fresh credential file. Closed
// stdin or an empty answer means no sealing, so scripted logins keep
// working.
func (a *App) askSealPassphrase() ([]byte, error) {
	answer, err := GetSimpleText(a.reader, "Protect the credential file with a passphrase? [y/N]", a.out)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if !strings.EqualFold(answer, "y") {
		return nil, nil
	}
	return getPassphraseTwice(a.out)
}
