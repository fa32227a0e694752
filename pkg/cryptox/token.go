package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RefreshTokenSize is the raw entropy of an opaque refresh token in bytes.
const RefreshTokenSize = 32

// GenerateRefreshToken creates an opaque refresh token: 32 bytes from the
// OS CSPRNG, standard base64 encoded. The value is unguessable and carries
// no structure; clients treat it as a bearer secret.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, RefreshTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded. Stores keep fingerprints instead of raw token values
// so a leaked database row is not a usable credential.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
