package qrlogin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func newQRSession(t *testing.T, mux *http.ServeMux) *session.Session {
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

func TestFlow_Begin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/qr/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"message":"0","data":{` +
			`"url":"https://passport.bilibili.com/h5-app/passport/login/scan?navhide=1&qrcode_key=abc",` +
			`"qrcode_key":"abc"}}`))
	})

	f := NewFlow(newQRSession(t, mux), nil)

	login, err := f.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", login.QRCodeKey)
	assert.Contains(t, login.URL, "qrcode_key=abc")
}

func TestFlow_Begin_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/qr/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-412,"message":"blocked"}`))
	})

	f := NewFlow(newQRSession(t, mux), nil)

	_, err := f.Begin(context.Background())
	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, int64(-412), remote.Code)
}

func TestLogin_QRCode(t *testing.T) {
	l := &Login{URL: "https://passport.bilibili.com/h5-app/passport/login/scan?qrcode_key=abc"}

	code, err := l.QRCode()
	require.NoError(t, err)
	require.NotNil(t, code)

	bounds := code.Bounds()
	assert.GreaterOrEqual(t, bounds.Dx(), 21, "smallest QR version is 21x21")
	assert.Equal(t, bounds.Dx(), bounds.Dy())

	// deterministic for the same input
	again, err := l.QRCode()
	require.NoError(t, err)
	assert.Equal(t, bounds, again.Bounds())
}

func TestLogin_QRCode_TooLong(t *testing.T) {
	l := &Login{URL: strings.Repeat("a", 8000)}

	_, err := l.QRCode()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrQRCode)
}

func TestFlow_Poll_StateMapping(t *testing.T) {
	tests := []struct {
		code int64
		want State
	}{
		{86038, StateExpired},
		{86090, StateWaitConfirm},
		{86101, StateWaitScan},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("code %d", tc.code), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/qr/poll", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"code":0,"message":"0","data":{"code":%d,"refresh_token":""}}`, tc.code)
			})

			f := NewFlow(newQRSession(t, mux), nil)

			res, err := f.Poll(context.Background(), "key")
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.State)
			assert.Nil(t, res.Credential)
		})
	}
}

func TestFlow_Poll_UnknownCodeIsProtocolError(t *testing.T) {
	for _, code := range []int64{1, -1, 86000, 86102} {
		t.Run(fmt.Sprintf("code %d", code), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/qr/poll", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"code":0,"message":"0","data":{"code":%d,"refresh_token":""}}`, code)
			})

			f := NewFlow(newQRSession(t, mux), nil)

			_, err := f.Poll(context.Background(), "key")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrParse)
		})
	}
}

func TestFlow_Poll_ScriptedLoginSequence(t *testing.T) {
	script := []int64{86101, 86101, 86090, 0}
	var (
		mu    sync.Mutex
		calls int
		keys  []string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/qr/poll", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		step := calls
		calls++
		keys = append(keys, r.URL.Query().Get("qrcode_key"))
		mu.Unlock()

		code := script[step]
		if code == 0 {
			// успешный ответ выставляет сессионные куки
			http.SetCookie(w, &http.Cookie{Name: "SESSDATA", Value: "sess-new", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "bili_jct", Value: "csrf-new", Path: "/"})
			w.Write([]byte(`{"code":0,"message":"0","data":{"code":0,"refresh_token":"tok123"}}`))
			return
		}
		fmt.Fprintf(w, `{"code":0,"message":"0","data":{"code":%d,"refresh_token":""}}`, code)
	})

	f := NewFlow(newQRSession(t, mux), nil)
	ctx := context.Background()

	wantStates := []State{StateWaitScan, StateWaitScan, StateWaitConfirm, StateSuccess}
	var last *PollResult
	for i, want := range wantStates {
		res, err := f.Poll(ctx, "key-1")
		require.NoError(t, err, "poll %d", i)
		assert.Equal(t, want, res.State, "poll %d", i)
		last = res
	}

	require.NotNil(t, last.Credential)
	assert.Equal(t, "tok123", last.Credential.RefreshToken)
	assert.Contains(t, last.Credential.Cookies, "sess-new")
	assert.Contains(t, last.Credential.Cookies, "csrf-new")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, calls)
	for _, k := range keys {
		assert.Equal(t, "key-1", k)
	}
}

func TestState_Strings(t *testing.T) {
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "expired", StateExpired.String())
	assert.Equal(t, "awaiting confirmation", StateWaitConfirm.String())
	assert.Equal(t, "awaiting scan", StateWaitScan.String())

	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateExpired.Terminal())
	assert.False(t, StateWaitConfirm.Terminal())
	assert.False(t, StateWaitScan.Terminal())
}
