// Package credfile stores credentials on disk, either as plain JSON or
// sealed with a passphrase.
package credfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bilicred/internal/common"
	"bilicred/internal/credential"
	"bilicred/internal/cryptox"
)

// ErrWrongPassphrase is returned by LoadSealed when the passphrase does
// not match the one the file was sealed with.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// Credential files hold live session cookies, so they are never group
// or world readable.
const fileMode = 0o600

const sealedVersion = 1

// sealedFile is the on-disk container for an encrypted credential.
// []byte fields round-trip through JSON as base64.
type sealedFile struct {
	Version  int    `json:"version"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
	Nonce    []byte `json:"nonce"`
	Data     []byte `json:"data"`
}

// Save writes cred to path as plain JSON, creating parent directories
// as needed.
func Save(path string, cred *credential.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return common.InternalError(err)
	}
	return writeFile(path, data)
}

// Load reads a plain JSON credential from path.
func Load(path string) (*credential.Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.InternalError(err)
	}
	defer f.Close()
	return credential.Load(f)
}

// SaveSealed writes cred to path encrypted under a key derived from
// passphrase. A fresh salt is generated per save, so sealing the same
// credential twice produces different files.
func SaveSealed(path string, cred *credential.Credential, passphrase []byte) error {
	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.Seal(cred, key)
	if err != nil {
		return common.InternalError(err)
	}

	data, err := json.Marshal(sealedFile{
		Version:  sealedVersion,
		Salt:     salt,
		Verifier: cryptox.MakeVerifier(key),
		Nonce:    nonce,
		Data:     ciphertext,
	})
	if err != nil {
		return common.InternalError(err)
	}
	return writeFile(path, data)
}

// LoadSealed reads a sealed credential from path and decrypts it with
// the key derived from passphrase.
func LoadSealed(path string, passphrase []byte) (*credential.Credential, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.InternalError(err)
	}

	var file sealedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, common.InternalError(err)
	}
	if file.Version != sealedVersion {
		return nil, common.InternalError(fmt.Errorf("unsupported credential file version %d", file.Version))
	}

	key := cryptox.DeriveKey(passphrase, file.Salt)
	defer common.WipeByteArray(key)

	if !cryptox.VerifyKey(key, file.Verifier) {
		return nil, ErrWrongPassphrase
	}

	var cred credential.Credential
	if err := cryptox.Open(file.Data, file.Nonce, key, &cred); err != nil {
		return nil, common.InternalError(err)
	}
	return &cred, nil
}

// IsSealed reports whether the file at path is a sealed container
// rather than a plain JSON credential.
func IsSealed(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, common.InternalError(err)
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false, common.InternalError(err)
	}
	return probe.Version == sealedVersion, nil
}

// writeFile writes through a temp name so a crash mid-write never
// leaves a truncated credential behind.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return common.InternalError(err)
		}
	}
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return common.InternalError(err)
	}
	tmp := path + ".tmp" + suffix
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return common.InternalError(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return common.InternalError(err)
	}
	return nil
}
