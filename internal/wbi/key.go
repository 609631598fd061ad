// Package wbi implements the request signing scheme some web APIs started
// requiring in March 2023. A signing key is derived daily from two image
// URLs exposed by the nav endpoint; outgoing query strings are salted with
// it and carry an MD5 digest.
package wbi

import (
	"fmt"
	"strings"
	"time"

	"bilicred/internal/common"
)

// The scramble table applied to the concatenated key fragments. Public
// knowledge, shared by every client implementation.
var mixinKeyEncTab = [64]int{
	46, 47, 18, 2, 53, 8, 23, 32, 15, 50, 10, 31, 58, 3, 45, 35,
	27, 43, 5, 49, 33, 9, 42, 19, 29, 28, 14, 39, 12, 38, 41, 13,
	37, 48, 7, 16, 24, 55, 40, 61, 26, 17, 0, 1, 60, 51, 30, 4,
	22, 25, 54, 21, 56, 59, 6, 63, 57, 62, 11, 36, 20, 34, 44, 52,
}

const sourceLen = 64

// timeNow is a seam for tests.
var timeNow = time.Now

// cst is the fixed offset the key expiry is anchored to.
var cst = time.FixedZone("UTC+8", 8*60*60)

// Key is a derived signing key. Immutable once constructed: it can be
// shared read-only between concurrent signers, and an expired key is
// discarded and re-derived, never patched in place.
type Key struct {
	// MixinKey is the full 64-character scrambled string, used verbatim
	// as the digest salt.
	MixinKey string

	// ExpireAt is an exclusive upper bound: signing at or after this
	// instant fails.
	ExpireAt time.Time
}

// Expired reports whether the key is no longer usable at the given instant.
func (k Key) Expired(now time.Time) bool {
	return !now.Before(k.ExpireAt)
}

// DeriveKey builds a signing key from the two image URLs of the nav
// payload. Keys are valid until the next midnight UTC+8.
func DeriveKey(imgURL, subURL string) (Key, error) {
	imgKey, ok := urlToKey(imgURL)
	if !ok {
		return Key{}, fmt.Errorf("%w: invalid img_url %q", common.ErrParse, imgURL)
	}
	subKey, ok := urlToKey(subURL)
	if !ok {
		return Key{}, fmt.Errorf("%w: invalid sub_url %q", common.ErrParse, subURL)
	}

	source := imgKey + subKey
	if len(source) != sourceLen {
		return Key{}, fmt.Errorf("%w: wbi key fragments have length %d, want %d",
			common.ErrParse, len(source), sourceLen)
	}

	var out [sourceLen]byte
	for i := 0; i < sourceLen; i++ {
		out[mixinKeyEncTab[i]] = source[i]
	}

	return Key{
		MixinKey: string(out[:]),
		ExpireAt: nextMidnight(timeNow()),
	}, nil
}

// urlToKey extracts the key fragment from a URL of the form
// `https://host/bfs/wbi/<fragment>.png`: the last path segment, cut at
// the first dot.
func urlToKey(rawurl string) (string, bool) {
	seg := rawurl
	if i := strings.LastIndexByte(rawurl, '/'); i >= 0 {
		seg = rawurl[i+1:]
	}
	key, _, _ := strings.Cut(seg, ".")
	return key, key != ""
}

// nextMidnight returns 00:00:00 of the next calendar day in UTC+8.
func nextMidnight(now time.Time) time.Time {
	local := now.In(cst).AddDate(0, 0, 1)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, cst)
}
