package credential

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilicred/internal/api"
	"bilicred/internal/common"
	"bilicred/internal/session"
)

func testEndpoints(base string) api.Endpoints {
	return api.Endpoints{
		Nav:            base + "/nav",
		CheckRefresh:   base + "/check",
		Correspond:     base + "/correspond/",
		RefreshCookie:  base + "/refresh",
		ConfirmRefresh: base + "/confirm",
		QRGenerate:     base + "/qr/generate",
		QRPoll:         base + "/qr/poll",
		MyInfo:         base + "/myinfo",
		VipInfo:        base + "/vipinfo",
	}
}

// refreshRig records every request the flow makes, in order.
type refreshRig struct {
	mu    sync.Mutex
	paths []string
	forms map[string]url.Values
}

func newRefreshRig() *refreshRig {
	return &refreshRig{forms: make(map[string]url.Values)}
}

func (rig *refreshRig) record(r *http.Request) {
	_ = r.ParseForm()
	rig.mu.Lock()
	defer rig.mu.Unlock()
	rig.paths = append(rig.paths, r.URL.Path)
	if len(r.PostForm) > 0 {
		rig.forms[r.URL.Path] = r.PostForm
	}
}

func (rig *refreshRig) recorded() []string {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return append([]string(nil), rig.paths...)
}

func (rig *refreshRig) form(path string) url.Values {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return rig.forms[path]
}

func newRefreshSession(t *testing.T, mux *http.ServeMux) *session.Session {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s, err := session.New(session.Config{
		Endpoints:    testEndpoints(srv.URL),
		HTTPClient:   srv.Client(),
		CookieDomain: "127.0.0.1",
	})
	require.NoError(t, err)
	return s
}

func seedCSRFCookie(t *testing.T, s *session.Session, value string) {
	t.Helper()
	snap := `[{"name":"bili_jct","value":"` + value + `","domain":"127.0.0.1","path":"/"}]`
	require.NoError(t, s.RestoreCookies(snap))
}

func TestRefresher_ShortCircuitWhenNotRequired(t *testing.T) {
	rig := newRefreshRig()
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh":false,"timestamp":1700000000}}`))
	})

	s := newRefreshSession(t, mux)
	ref := NewRefresher(s, nil)

	cred := &Credential{Cookies: "jar-state", RefreshToken: "old-token"}
	got, err := ref.Refresh(context.Background(), cred)
	require.NoError(t, err)

	assert.Same(t, cred, got, "credential must come back unchanged")
	assert.Equal(t, []string{"/check"}, rig.recorded(), "no further network calls")
}

func TestRefresher_FullFlow(t *testing.T) {
	rig := newRefreshRig()
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh":true,"timestamp":1700000000}}`))
	})
	mux.HandleFunc("/correspond/", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`<html><body><div id="1-name">server-csrf</div></body></html>`))
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		http.SetCookie(w, &http.Cookie{Name: "bili_jct", Value: "new-csrf", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "SESSDATA", Value: "new-sess", Path: "/"})
		w.Write([]byte(`{"code":0,"message":"0","data":{"status":0,"message":"","refresh_token":"new-token"}}`))
	})
	mux.HandleFunc("/confirm", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":null}`))
	})

	s := newRefreshSession(t, mux)
	seedCSRFCookie(t, s, "old-csrf")
	ref := NewRefresher(s, nil)

	cred := &Credential{Cookies: "stale", RefreshToken: "old-token"}
	got, err := ref.Refresh(context.Background(), cred)
	require.NoError(t, err)

	// step order
	paths := rig.recorded()
	require.Len(t, paths, 4)
	assert.Equal(t, "/check", paths[0])
	assert.True(t, strings.HasPrefix(paths[1], "/correspond/"))
	assert.Equal(t, "/refresh", paths[2])
	assert.Equal(t, "/confirm", paths[3])

	// correspond path is the hex-encoded RSA proof token
	proof := strings.TrimPrefix(paths[1], "/correspond/")
	assert.Len(t, proof, 512)
	_, err = hex.DecodeString(proof)
	assert.NoError(t, err)

	// exchange form carries both CSRF tokens, the source and the old token
	exchange := rig.form("/refresh")
	require.NotNil(t, exchange)
	assert.Equal(t, "old-csrf", exchange.Get("csrf"))
	assert.Equal(t, "server-csrf", exchange.Get("refresh_csrf"))
	assert.Equal(t, "main_web", exchange.Get("source"))
	assert.Equal(t, "old-token", exchange.Get("refresh_token"))

	// confirmation invalidates the old token under the server CSRF
	confirm := rig.form("/confirm")
	require.NotNil(t, confirm)
	assert.Equal(t, "server-csrf", confirm.Get("csrf"))
	assert.Equal(t, "old-token", confirm.Get("refresh_token"))

	// the result carries the rotated state, the input is untouched
	assert.Equal(t, "new-token", got.RefreshToken)
	assert.Contains(t, got.Cookies, "new-csrf")
	assert.Contains(t, got.Cookies, "new-sess")
	assert.Equal(t, "old-token", cred.RefreshToken)
	assert.Equal(t, "stale", cred.Cookies)
}

func TestRefresher_ConfirmFailureSurfaces(t *testing.T) {
	rig := newRefreshRig()
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh":true,"timestamp":1700000000}}`))
	})
	mux.HandleFunc("/correspond/", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`<div id="1-name">server-csrf</div>`))
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh_token":"new-token"}}`))
	})
	mux.HandleFunc("/confirm", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":-111,"message":"csrf 校验失败"}`))
	})

	s := newRefreshSession(t, mux)
	seedCSRFCookie(t, s, "old-csrf")
	ref := NewRefresher(s, nil)

	_, err := ref.Refresh(context.Background(), &Credential{RefreshToken: "old-token"})
	require.Error(t, err)

	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, int64(-111), remote.Code)

	// the exchange did happen before the failure
	assert.Contains(t, rig.recorded(), "/refresh")
}

func TestRefresher_MissingLocalCSRF(t *testing.T) {
	rig := newRefreshRig()
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh":true,"timestamp":1700000000}}`))
	})
	mux.HandleFunc("/correspond/", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`<div id="1-name">server-csrf</div>`))
	})

	s := newRefreshSession(t, mux) // jar intentionally empty
	ref := NewRefresher(s, nil)

	_, err := ref.Refresh(context.Background(), &Credential{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.Contains(t, err.Error(), "re-login")
	assert.NotContains(t, rig.recorded(), "/refresh")
}

func TestRefresher_CSRFExtractionFailure(t *testing.T) {
	rig := newRefreshRig()
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`{"code":0,"message":"0","data":{"refresh":true,"timestamp":1700000000}}`))
	})
	mux.HandleFunc("/correspond/", func(w http.ResponseWriter, r *http.Request) {
		rig.record(r)
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	})

	s := newRefreshSession(t, mux)
	seedCSRFCookie(t, s, "old-csrf")
	ref := NewRefresher(s, nil)

	_, err := ref.Refresh(context.Background(), &Credential{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.NotContains(t, rig.recorded(), "/refresh")
}

func TestRefresher_CheckFailurePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-101,"message":"账号未登录"}`))
	})

	s := newRefreshSession(t, mux)
	ref := NewRefresher(s, nil)

	_, err := ref.Refresh(context.Background(), &Credential{RefreshToken: "old-token"})
	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, int64(-101), remote.Code)
}
