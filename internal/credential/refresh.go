package credential

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"bilicred/internal/common"
	"bilicred/internal/logging"
	"bilicred/internal/session"
)

// refreshCheck is the server's verdict on whether the credential needs
// rotation.
type refreshCheck struct {
	Refresh   bool  `json:"refresh"`
	Timestamp int64 `json:"timestamp"`
}

// refreshData carries the next-generation token issued by the exchange.
type refreshData struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresher rotates a credential through the cookie refresh flow.
//
// Refresh is not re-entrant per credential: two concurrent attempts with
// the same old token can both exchange it before either confirms, racing
// to invalidate a token the other already spent. The internal mutex is
// held across the whole flow.
type Refresher struct {
	mu  sync.Mutex
	s   *session.Session
	log logging.Logger
}

func NewRefresher(s *session.Session, log logging.Logger) *Refresher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Refresher{s: s, log: log}
}

// Refresh asks the server whether cred needs rotation and, if so, runs the
// full exchange. The session jar must already hold cred's cookies.
//
// When no refresh is needed, cred is returned unchanged and no further
// network calls are made. Steps are never retried: the correspond path is
// derived from the check timestamp and is not safely replayable, a failed
// attempt must restart from the check.
func (r *Refresher) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	endpoints := r.s.Endpoints()

	check, err := session.GetJSON[refreshCheck](ctx, r.s, endpoints.CheckRefresh, nil)
	if err != nil {
		return nil, err
	}
	if !check.Refresh {
		r.log.Debug(ctx, "credential does not need refresh")
		return cred, nil
	}

	r.log.Info(ctx, "refreshing credential", "timestamp", check.Timestamp)

	path, err := CorrespondPath(check.Timestamp)
	if err != nil {
		return nil, err
	}

	page, err := r.s.GetBody(ctx, endpoints.Correspond+path, nil)
	if err != nil {
		return nil, err
	}
	refreshCSRF, err := extractRefreshCSRF(page)
	if err != nil {
		return nil, err
	}

	csrf, ok := r.s.CookieValue(common.CSRFCookieName)
	if !ok {
		return nil, fmt.Errorf("%w: no %s cookie in jar, re-login required",
			common.ErrInternal, common.CSRFCookieName)
	}

	exchanged, err := session.PostFormJSON[refreshData](ctx, r.s, endpoints.RefreshCookie, url.Values{
		"csrf":          {csrf},
		"refresh_csrf":  {refreshCSRF},
		"source":        {common.RefreshSource},
		"refresh_token": {cred.RefreshToken},
	})
	if err != nil {
		return nil, err
	}

	// Invalidates the old token server-side. The new token already exists
	// at this point: if confirmation fails the old one may remain usable,
	// so the failure must reach the caller.
	err = session.PostFormCheck(ctx, r.s, endpoints.ConfirmRefresh, url.Values{
		"csrf":          {refreshCSRF},
		"refresh_token": {cred.RefreshToken},
	})
	if err != nil {
		r.log.Error(ctx, "refresh confirmation failed, old token may still be valid", "error", err)
		return nil, err
	}

	cookies, err := r.s.CookieSnapshot()
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, "credential refreshed")
	return &Credential{Cookies: cookies, RefreshToken: exchanged.RefreshToken}, nil
}
