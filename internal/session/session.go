// Package session owns the HTTP client, cookie jar and signing key shared
// by every API call made under one authenticated identity.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilicred/internal/api"
	"bilicred/internal/common"
	"bilicred/internal/jarx"
	"bilicred/internal/logging"
	"bilicred/internal/wbi"
)

const defaultTimeout = 30 * time.Second

// Sent on every request. Some endpoints answer -412 to clients that do not
// look like a browser.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config collects the knobs for a Session. The zero value is usable: it
// means production endpoints, a default HTTP client and no logging.
type Config struct {
	// Endpoints to talk to. Zero value means api.DefaultEndpoints.
	Endpoints api.Endpoints

	// HTTPClient is cloned and given the session cookie jar. Nil means a
	// plain client with a 30s timeout.
	HTTPClient *http.Client

	// UserAgent overrides the browser-like default.
	UserAgent string

	// CookieDomain is the registrable domain session cookies live under.
	// Defaults to common.CookieDomain; tests point it at the test host.
	CookieDomain string

	Logger logging.Logger
}

// Session is safe for concurrent use. The signing key is swapped as a
// whole under a lock, never mutated in place.
type Session struct {
	client       *http.Client
	jar          *jarx.Jar
	endpoints    api.Endpoints
	userAgent    string
	cookieDomain string
	log          logging.Logger

	keyMu sync.RWMutex
	key   wbi.Key
}

// New builds a Session from cfg.
func New(cfg Config) (*Session, error) {
	endpoints := cfg.Endpoints
	if (endpoints == api.Endpoints{}) {
		endpoints = api.DefaultEndpoints()
	}
	if err := endpoints.Validate(); err != nil {
		return nil, common.InternalError(err)
	}

	jar := jarx.New()

	var client http.Client
	if cfg.HTTPClient != nil {
		client = *cfg.HTTPClient
	} else {
		client.Timeout = defaultTimeout
	}
	client.Jar = jar

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	cookieDomain := cfg.CookieDomain
	if cookieDomain == "" {
		cookieDomain = common.CookieDomain
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	return &Session{
		client:       &client,
		jar:          jar,
		endpoints:    endpoints,
		userAgent:    userAgent,
		cookieDomain: cookieDomain,
		log:          log,
	}, nil
}

// Endpoints returns the endpoint set this session talks to.
func (s *Session) Endpoints() api.Endpoints {
	return s.endpoints
}

// Bootstrap restores a cookie snapshot and derives a fresh signing key.
// The usual first call after loading a stored credential.
func (s *Session) Bootstrap(ctx context.Context, cookies string) error {
	if err := s.RestoreCookies(cookies); err != nil {
		return err
	}
	return s.RenewSigningKey(ctx)
}

// RestoreCookies replaces the jar contents with a previous snapshot.
func (s *Session) RestoreCookies(snapshot string) error {
	if err := s.jar.Restore(snapshot); err != nil {
		return common.InternalError(err)
	}
	return nil
}

// CookieSnapshot serializes the current jar state.
func (s *Session) CookieSnapshot() (string, error) {
	snap, err := s.jar.Snapshot()
	if err != nil {
		return "", common.InternalError(err)
	}
	return snap, nil
}

// CookieValue reads a cookie scoped to the session cookie domain.
func (s *Session) CookieValue(name string) (string, bool) {
	return s.jar.Value(s.cookieDomain, name)
}

// navWbi is the slice of the nav payload the signing key derivation needs.
type navWbi struct {
	WbiImg struct {
		ImgURL string `json:"img_url"`
		SubURL string `json:"sub_url"`
	} `json:"wbi_img"`
}

// RenewSigningKey fetches the nav document and derives a new signing key
// from it, replacing the cached one.
func (s *Session) RenewSigningKey(ctx context.Context) error {
	data, err := GetJSON[navWbi](ctx, s, s.endpoints.Nav, nil)
	if err != nil {
		return err
	}

	key, err := wbi.DeriveKey(data.WbiImg.ImgURL, data.WbiImg.SubURL)
	if err != nil {
		return err
	}

	s.keyMu.Lock()
	s.key = key
	s.keyMu.Unlock()

	s.log.Info(ctx, "signing key renewed", "expires_at", key.ExpireAt)
	return nil
}

// SigningKey returns the cached signing key; ok is false when no key has
// been derived yet.
func (s *Session) SigningKey() (wbi.Key, bool) {
	s.keyMu.RLock()
	defer s.keyMu.RUnlock()
	return s.key, s.key.MixinKey != ""
}
