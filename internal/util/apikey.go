package util

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// KeyPrefix marks long-lived API keys apart from session tokens.
const KeyPrefix = "apf_"

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewAPIKey generates an opaque bearer key: "apf_" followed by 32 random
// bytes encoded as lowercase base32.
func NewAPIKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return KeyPrefix + strings.ToLower(keyEncoding.EncodeToString(buf))
}

// IsAPIKey reports whether a bearer credential is an API key rather than a
// session token.
func IsAPIKey(credential string) bool {
	return strings.HasPrefix(credential, KeyPrefix)
}
