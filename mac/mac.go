// Package mac signs and verifies list data with the client key handed out by
// the list service.
//
// Keys and MACs travel in web-safe base64 ('-' and '_' in place of '+' and
// '/'), padded. The MAC is an HMAC-SHA1 over the raw bytes it covers.
package mac

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
)

// Size of a decoded MAC in bytes.
const Size = sha1.Size

// Verify reports whether mac is the MAC of data under key. Malformed keys or
// MACs never verify.
func Verify(key, mac string, data []byte) bool {
	rawKey, err := base64.URLEncoding.DecodeString(key)
	if err != nil || len(rawKey) == 0 {
		return false
	}

	want, err := base64.URLEncoding.DecodeString(mac)
	if err != nil || len(want) != Size {
		return false
	}

	h := hmac.New(sha1.New, rawKey)
	h.Write(data)

	return hmac.Equal(h.Sum(nil), want)
}

// Sign returns the web-safe MAC of data under key.
func Sign(key string, data []byte) (string, error) {
	rawKey, err := base64.URLEncoding.DecodeString(key)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha1.New, rawKey)
	h.Write(data)

	return base64.URLEncoding.EncodeToString(h.Sum(nil)), nil
}
