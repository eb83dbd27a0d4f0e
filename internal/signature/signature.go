// Package signature checks GitHub's X-Hub-Signature-256 header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	Header = "X-Hub-Signature-256"
	Prefix = "sha256="
)

// Sign returns the header value GitHub would send for body under secret.
func Sign(body []byte, secret string) string {
	return Prefix + hex.EncodeToString(digest(body, secret))
}

// Verify reports whether header carries the HMAC-SHA256 of rawBody keyed by
// secret. Malformed headers and an empty secret are reported as false.
func Verify(rawBody []byte, header, secret string) bool {
	if secret == "" || !strings.HasPrefix(header, Prefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, Prefix))
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(got, digest(rawBody, secret))
}

func digest(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
