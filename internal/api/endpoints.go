// Package api defines the JSON response envelope, server error codes and the
// endpoint set shared by all bilibili web API calls.
package api

import (
	"fmt"
	"net/url"
)

// Endpoints lists the absolute URLs of every web API the client talks to.
// Zero values are not usable; start from DefaultEndpoints and override
// individual entries when pointing the client at a staging host or a test
// server.
type Endpoints struct {
	// Nav returns profile info for the signed-in account along with the
	// image URLs the signing key is derived from.
	Nav string `json:"nav"`

	// CheckRefresh reports whether the credential needs a refresh.
	CheckRefresh string `json:"check_refresh"`

	// Correspond is the base the RSA correspond path is appended to.
	// Must end with a slash.
	Correspond string `json:"correspond"`

	// RefreshCookie rotates the session cookies.
	RefreshCookie string `json:"refresh_cookie"`

	// ConfirmRefresh invalidates the previous refresh token.
	ConfirmRefresh string `json:"confirm_refresh"`

	// QRGenerate creates a login QR code, QRPoll reports its scan state.
	QRGenerate string `json:"qr_generate"`
	QRPoll     string `json:"qr_poll"`

	// MyInfo and VipInfo return detailed account and subscription info.
	MyInfo  string `json:"my_info"`
	VipInfo string `json:"vip_info"`
}

// DefaultEndpoints returns the production endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Nav:            "https://api.bilibili.com/x/web-interface/nav",
		CheckRefresh:   "https://passport.bilibili.com/x/passport-login/web/cookie/info",
		Correspond:     "https://www.bilibili.com/correspond/1/",
		RefreshCookie:  "https://passport.bilibili.com/x/passport-login/web/cookie/refresh",
		ConfirmRefresh: "https://passport.bilibili.com/x/passport-login/web/confirm/refresh",
		QRGenerate:     "https://passport.bilibili.com/x/passport-login/web/qrcode/generate",
		QRPoll:         "https://passport.bilibili.com/x/passport-login/web/qrcode/poll",
		MyInfo:         "https://api.bilibili.com/x/space/myinfo",
		VipInfo:        "https://api.bilibili.com/x/vip/web/user/info",
	}
}

// Validate checks that every endpoint is a parseable absolute URL.
func (e Endpoints) Validate() error {
	entries := []struct {
		name string
		url  string
	}{
		{"nav", e.Nav},
		{"check_refresh", e.CheckRefresh},
		{"correspond", e.Correspond},
		{"refresh_cookie", e.RefreshCookie},
		{"confirm_refresh", e.ConfirmRefresh},
		{"qr_generate", e.QRGenerate},
		{"qr_poll", e.QRPoll},
		{"my_info", e.MyInfo},
		{"vip_info", e.VipInfo},
	}
	for _, entry := range entries {
		if entry.url == "" {
			return fmt.Errorf("endpoint %s is empty", entry.name)
		}
		u, err := url.Parse(entry.url)
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", entry.name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endpoint %s: not an absolute url: %s", entry.name, entry.url)
		}
	}
	return nil
}
