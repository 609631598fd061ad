package wbi

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilicred/internal/common"
)

func TestSign_KnownVector(t *testing.T) {
	fixedTime(t, 1684746387)

	key := Key{
		MixinKey: "72136226c6a73669787ee4fd02a74c27",
		ExpireAt: time.Unix(1684746387, 0).Add(24 * time.Hour),
	}
	query := url.Values{
		"foo": {"114"},
		"bar": {"514"},
		"zab": {"1919810"},
	}

	signed, err := Sign(key, query)
	require.NoError(t, err)

	assert.Equal(t, "1684746387", signed.Get("wts"))
	assert.Equal(t, "90efcab09403023875b8516f07e9f9de", signed.Get("w_rid"))

	// original pairs come through untouched
	assert.Equal(t, "114", signed.Get("foo"))
	assert.Equal(t, "514", signed.Get("bar"))
	assert.Equal(t, "1919810", signed.Get("zab"))
}

func TestSign_ExpiredKey(t *testing.T) {
	fixedTime(t, 1684746387)

	key := Key{
		MixinKey: "72136226c6a73669787ee4fd02a74c27",
		ExpireAt: time.Unix(1684746387, 0),
	}

	queries := []url.Values{
		{},
		{"foo": {"114"}},
		{"a": {"1"}, "b": {"2"}, "c": {"3"}},
	}
	for _, q := range queries {
		_, err := Sign(key, q)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSigningKeyExpired)
	}
}

func TestSign_ZeroKeyIsExpired(t *testing.T) {
	_, err := Sign(Key{}, url.Values{})
	assert.ErrorIs(t, err, common.ErrSigningKeyExpired)
}

func TestSign_DoesNotMutateInput(t *testing.T) {
	fixedTime(t, 1684746387)

	key := Key{MixinKey: "salt", ExpireAt: time.Unix(1684746387, 0).Add(time.Hour)}
	query := url.Values{"foo": {"114"}}

	_, err := Sign(key, query)
	require.NoError(t, err)

	assert.Equal(t, url.Values{"foo": {"114"}}, query)
	assert.Empty(t, query.Get("wts"))
	assert.Empty(t, query.Get("w_rid"))
}

func TestSign_Deterministic(t *testing.T) {
	fixedTime(t, 1684746387)

	key := Key{MixinKey: "72136226c6a73669787ee4fd02a74c27", ExpireAt: time.Unix(2684746387, 0)}
	query := url.Values{"foo": {"114"}, "bar": {"514"}}

	a, err := Sign(key, query)
	require.NoError(t, err)
	b, err := Sign(key, query)
	require.NoError(t, err)

	assert.Equal(t, a.Get("w_rid"), b.Get("w_rid"))
	assert.Equal(t, a.Encode(), b.Encode())
}

func TestSign_SaltChangesSignature(t *testing.T) {
	fixedTime(t, 1684746387)

	query := url.Values{"foo": {"114"}}
	expire := time.Unix(1684746387, 0).Add(time.Hour)

	a, err := Sign(Key{MixinKey: "aaaa", ExpireAt: expire}, query)
	require.NoError(t, err)
	b, err := Sign(Key{MixinKey: "bbbb", ExpireAt: expire}, query)
	require.NoError(t, err)

	assert.NotEqual(t, a.Get("w_rid"), b.Get("w_rid"))
}
