package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// SecretEncoding selects how NewSigningSecret renders its random bytes.
type SecretEncoding string

const (
	SecretHex       SecretEncoding = "hex"
	SecretBase64URL SecretEncoding = "base64url"
)

// MinSigningSecretBytes matches the HS256 output size; shorter keys weaken the MAC.
const MinSigningSecretBytes = 32

// NewSigningSecret returns size random bytes rendered with enc, ready to use
// as JWT_SECRET. An empty enc means hex.
func NewSigningSecret(size int, enc SecretEncoding) (string, error) {
	if size < MinSigningSecretBytes {
		return "", fmt.Errorf("a signing secret needs at least %d bytes, got %d", MinSigningSecretBytes, size)
	}
	var render func([]byte) string
	switch enc {
	case SecretHex, "":
		render = hex.EncodeToString
	case SecretBase64URL:
		render = base64.RawURLEncoding.EncodeToString
	default:
		return "", fmt.Errorf("unknown secret encoding %q, expected %s or %s", enc, SecretHex, SecretBase64URL)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return render(buf), nil
}
