package api

import (
	"encoding/json"
	"fmt"

	"bilicred/internal/common"
)

// Envelope is the JSON wrapper every web API response arrives in. A zero
// Code means success; the payload then sits under data.
type Envelope[T any] struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Payload returns the data field of a successful envelope.
//
// A non-zero code maps to *RemoteError. A zero code with a missing data
// field is treated as a parse error: the server broke its own contract.
func (e *Envelope[T]) Payload() (*T, error) {
	if e.Code != 0 {
		return nil, &RemoteError{Code: e.Code, Message: e.Message}
	}
	if e.Data == nil {
		return nil, fmt.Errorf("%w: data field cannot be empty", common.ErrParse)
	}
	return e.Data, nil
}

// Decode parses body as an envelope and unwraps its payload.
func Decode[T any](body []byte) (*T, error) {
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, common.ParseError(err)
	}
	return env.Payload()
}

// CheckCode parses body as a data-less envelope and returns the remote
// error for a non-zero code. Used for endpoints whose data field carries
// nothing of interest.
func CheckCode(body []byte) error {
	var env Envelope[struct{}]
	if err := json.Unmarshal(body, &env); err != nil {
		return common.ParseError(err)
	}
	if env.Code != 0 {
		return &RemoteError{Code: env.Code, Message: env.Message}
	}
	return nil
}
