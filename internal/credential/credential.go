// Package credential implements the persisted login credential and the
// server-driven refresh flow that rotates it.
package credential

import (
	"encoding/json"
	"io"

	"bilicred/internal/common"
)

// Credential is the persistent form of a login: the serialized cookie jar
// plus the refresh token the server issued with it. The two rotate
// together; cookies from one generation with a token from another leave
// the account half-refreshed.
type Credential struct {
	Cookies      string `json:"cookies"`
	RefreshToken string `json:"refresh_token"`
}

// Save writes the credential as JSON.
func (c *Credential) Save(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(c); err != nil {
		return common.InternalError(err)
	}
	return nil
}

// Load reads a credential previously written by Save.
func Load(r io.Reader) (*Credential, error) {
	var c Credential
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, common.InternalError(err)
	}
	return &c, nil
}
