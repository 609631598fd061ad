package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bilicred/internal/api"
	"bilicred/internal/common"
	"bilicred/internal/wbi"
)

// GetBody performs a GET and returns the raw response body. Used for the
// endpoints that answer with HTML instead of the JSON envelope.
func (s *Session) GetBody(ctx context.Context, rawurl string, query url.Values) ([]byte, error) {
	return s.do(ctx, http.MethodGet, rawurl, query, nil)
}

func (s *Session) do(ctx context.Context, method, rawurl string, query, form url.Values) ([]byte, error) {
	target := rawurl
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawurl, "?") {
			sep = "&"
		}
		target = rawurl + sep + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, common.InternalError(err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, common.NetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NetworkError(err)
	}

	s.log.Debug(ctx, "request done",
		"method", method, "url", rawurl, "status", resp.StatusCode, "elapsed", time.Since(start))
	return data, nil
}

// GetJSON performs a GET and unwraps the envelope payload.
func GetJSON[T any](ctx context.Context, s *Session, rawurl string, query url.Values) (*T, error) {
	body, err := s.do(ctx, http.MethodGet, rawurl, query, nil)
	if err != nil {
		return nil, err
	}
	return api.Decode[T](body)
}

// GetSignedJSON signs query with the session signing key before issuing
// the GET. A missing or expired key is renewed transparently.
func GetSignedJSON[T any](ctx context.Context, s *Session, rawurl string, query url.Values) (*T, error) {
	signed, err := s.signQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return GetJSON[T](ctx, s, rawurl, signed)
}

// PostFormJSON posts an urlencoded form and unwraps the envelope payload.
func PostFormJSON[T any](ctx context.Context, s *Session, rawurl string, form url.Values) (*T, error) {
	body, err := s.do(ctx, http.MethodPost, rawurl, nil, form)
	if err != nil {
		return nil, err
	}
	return api.Decode[T](body)
}

// PostFormCheck posts a form and verifies only the envelope code. Used for
// endpoints whose data field carries nothing.
func PostFormCheck(ctx context.Context, s *Session, rawurl string, form url.Values) error {
	body, err := s.do(ctx, http.MethodPost, rawurl, nil, form)
	if err != nil {
		return err
	}
	return api.CheckCode(body)
}

// signQuery signs query with the cached key, deriving a fresh one when
// none is cached or the cached one expired. The loop covers the narrow
// window where the key expires between the check and the signing call.
func (s *Session) signQuery(ctx context.Context, query url.Values) (url.Values, error) {
	for attempt := 0; attempt < 2; attempt++ {
		key, ok := s.SigningKey()
		if !ok || key.Expired(time.Now()) {
			if err := s.RenewSigningKey(ctx); err != nil {
				return nil, err
			}
			key, _ = s.SigningKey()
		}

		signed, err := wbi.Sign(key, query)
		if err == nil {
			return signed, nil
		}
		if !errors.Is(err, common.ErrSigningKeyExpired) {
			return nil, err
		}
	}
	return nil, common.ErrSigningKeyExpired
}
