// Package qrlogin implements the scan-to-login flow: issue a QR code,
// render it, poll its state until the account app confirms.
package qrlogin

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"bilicred/internal/common"
	"bilicred/internal/credential"
	"bilicred/internal/logging"
	"bilicred/internal/session"
)

// DefaultPollInterval is the polling cadence the web client uses. The
// caller owns the loop; this is just the conventional spacing.
const DefaultPollInterval = 10 * time.Second

// Poll status codes on the wire.
const (
	codeSuccess     = 0
	codeExpired     = 86038
	codeWaitConfirm = 86090
	codeWaitScan    = 86101
)

// Login is one QR login attempt. QRCodeKey correlates every subsequent
// poll with this attempt and is meaningless once a terminal state is
// reached.
type Login struct {
	URL       string `json:"url"`
	QRCodeKey string `json:"qrcode_key"`
}

// QRCode encodes the login URL as a scannable matrix. Pure function of
// the URL.
func (l *Login) QRCode() (barcode.Barcode, error) {
	code, err := qr.Encode(l.URL, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrQRCode, err)
	}
	return code, nil
}

// State of a login attempt as reported by a single poll.
type State int

const (
	// StateSuccess is terminal: the session cookies are set and the
	// result carries a fresh credential.
	StateSuccess State = iota
	// StateExpired is terminal: the QR code timed out, start over.
	StateExpired
	// StateWaitConfirm means scanned, waiting for in-app confirmation.
	StateWaitConfirm
	// StateWaitScan means nobody scanned the code yet.
	StateWaitScan
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateExpired:
		return "expired"
	case StateWaitConfirm:
		return "awaiting confirmation"
	case StateWaitScan:
		return "awaiting scan"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether polling should stop.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateExpired
}

// PollResult is the outcome of one poll. Credential is non-nil only for
// StateSuccess.
type PollResult struct {
	State      State
	Credential *credential.Credential
}

type pollData struct {
	Code         int64  `json:"code"`
	RefreshToken string `json:"refresh_token"`
}

// Flow drives QR logins over one session.
type Flow struct {
	s   *session.Session
	log logging.Logger
}

func NewFlow(s *session.Session, log logging.Logger) *Flow {
	if log == nil {
		log = logging.NewNop()
	}
	return &Flow{s: s, log: log}
}

// Begin asks the server for a new QR login attempt.
func (f *Flow) Begin(ctx context.Context) (*Login, error) {
	login, err := session.GetJSON[Login](ctx, f.s, f.s.Endpoints().QRGenerate, nil)
	if err != nil {
		return nil, err
	}
	f.log.Debug(ctx, "qr login issued", "qrcode_key", login.QRCodeKey)
	return login, nil
}

// Poll reports the current state of the attempt identified by qrcodeKey.
//
// On success the server has already applied the session cookies to the
// jar; the returned credential is the snapshot of that jar plus the
// refresh token from the poll response. Any status code outside the four
// known ones is a protocol violation, reported as a parse error rather
// than mapped to a default state.
func (f *Flow) Poll(ctx context.Context, qrcodeKey string) (*PollResult, error) {
	data, err := session.GetJSON[pollData](ctx, f.s, f.s.Endpoints().QRPoll,
		url.Values{"qrcode_key": {qrcodeKey}})
	if err != nil {
		return nil, err
	}

	switch data.Code {
	case codeSuccess:
		cookies, err := f.s.CookieSnapshot()
		if err != nil {
			return nil, err
		}
		f.log.Info(ctx, "qr login confirmed")
		return &PollResult{
			State: StateSuccess,
			Credential: &credential.Credential{
				Cookies:      cookies,
				RefreshToken: data.RefreshToken,
			},
		}, nil
	case codeExpired:
		return &PollResult{State: StateExpired}, nil
	case codeWaitConfirm:
		return &PollResult{State: StateWaitConfirm}, nil
	case codeWaitScan:
		return &PollResult{State: StateWaitScan}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected login state code %d", common.ErrParse, data.Code)
	}
}
