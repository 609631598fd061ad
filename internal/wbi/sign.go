package wbi

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"

	"bilicred/internal/common"
)

// Sign computes the w_rid signature for a query at the instant of sending.
//
// The digest covers the pairs sorted by raw key, percent-encoded, with a
// wts timestamp inserted and the mixin key appended as a trailing salt.
// The returned values carry the original pairs plus wts and w_rid; the
// input is not modified.
//
// An expired key yields ErrSigningKeyExpired, which the caller should
// treat as "derive a new key and sign again", not as a hard failure.
func Sign(key Key, query url.Values) (url.Values, error) {
	now := timeNow()
	if key.Expired(now) {
		return nil, common.ErrSigningKeyExpired
	}

	signed := make(url.Values, len(query)+2)
	for k, vs := range query {
		signed[k] = append([]string(nil), vs...)
	}
	signed.Set("wts", strconv.FormatInt(now.Unix(), 10))

	// url.Values.Encode sorts by key and percent-encodes, which is
	// exactly the canonical form the digest is computed over.
	digest := md5.Sum([]byte(signed.Encode() + key.MixinKey))
	signed.Set("w_rid", hex.EncodeToString(digest[:]))

	return signed, nil
}
