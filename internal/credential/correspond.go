package credential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	_ "embed"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"

	"bilicred/internal/common"
)

// The server publishes this key for the refresh proof; the private half
// stays server-side.
//
//go:embed correspond_path.pem
var correspondPEM []byte

var correspondKey = sync.OnceValues(parseCorrespondKey)

func parseCorrespondKey() (*rsa.PublicKey, error) {
	block, _ := pem.Decode(correspondPEM)
	if block == nil {
		return nil, errors.New("no pem block in embedded key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("embedded key is %T, want RSA", pub)
	}
	return key, nil
}

// CorrespondPath builds the single-use proof token for a refresh attempt:
// RSA-OAEP(SHA-256) over "refresh_<ts>", rendered as lowercase hex.
//
// OAEP padding is randomized, so two calls with the same timestamp yield
// different ciphertexts; both decrypt to the same plaintext server-side.
func CorrespondPath(ts int64) (string, error) {
	key, err := correspondKey()
	if err != nil {
		return "", common.InternalError(err)
	}

	plaintext := fmt.Sprintf("refresh_%d", ts)
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, key, []byte(plaintext), nil)
	if err != nil {
		return "", common.InternalError(err)
	}
	return hex.EncodeToString(ciphertext), nil
}
