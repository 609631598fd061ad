// Package common defines shared constants and sentinel errors used across
// bilicred components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Transport-level failures: DNS, TLS, timeouts, broken connections.
	ErrNetwork = errors.New("network error")

	// Malformed or unexpected response payloads: invalid JSON, a missing
	// data field, HTML without the expected node.
	ErrParse = errors.New("parse error")

	// Local failures on our side of the wire (crypto, cookie store, IO).
	ErrInternal = errors.New("internal error")

	// The cached signing key passed its expiry; derive a fresh one.
	ErrSigningKeyExpired = errors.New("signing key expired")

	// Encoding a login URL into a QR matrix failed.
	ErrQRCode = errors.New("qr code error")
)

// NetworkError tags err as transport-level. The result matches both
// ErrNetwork and err under errors.Is.
func NetworkError(err error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// ParseError tags err as a response-decoding failure.
func ParseError(err error) error {
	return fmt.Errorf("%w: %w", ErrParse, err)
}

// InternalError tags err as a local failure.
func InternalError(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
