// Package sign implements GDAX request signing (spec.md §6): HMAC-SHA256
// over timestamp+method+path+body, keyed by a base64-decoded 64-byte
// secret, base64-encoded on output. No third-party library abstracts
// this better than the standard library's own hmac/sha256 primitives —
// see DESIGN.md for why this is a deliberate stdlib exception.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidKeyLength is returned when the decoded secret is not
// exactly 64 bytes, per spec.md §9's "the 64-byte HMAC-key length is
// still asserted" note.
var ErrInvalidKeyLength = errors.New("sign: api secret must decode to a 64-byte key")

// Sign computes the base64-encoded signature for a request.
func Sign(timestamp, method, path, body, apiSecret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(apiSecret)
	if err != nil {
		return "", fmt.Errorf("sign: decode api secret: %w", err)
	}
	if len(key) != 64 {
		return "", ErrInvalidKeyLength
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// WebsocketSubscribeSignature signs the fixed GET /users/self request
// used to authenticate the websocket subscribe frame (spec.md §6).
func WebsocketSubscribeSignature(timestamp, apiSecret string) (string, error) {
	return Sign(timestamp, "GET", "/users/self", "", apiSecret)
}
