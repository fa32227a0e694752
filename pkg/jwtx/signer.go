package jwtx

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey is the symmetric HMAC key shared by signing and verification.
// It is derived once from the configured secret and treated as read-only
// for the life of the process.
type SigningKey struct {
	key []byte
}

// NewSigningKey derives a signing key from the configured secret string.
// An empty secret is a configuration fault and is rejected here so the
// service fails at startup rather than on the first login.
func NewSigningKey(secret string) (SigningKey, error) {
	if secret == "" {
		return SigningKey{}, ErrEmptySecret
	}
	return SigningKey{key: []byte(secret)}, nil
}

// Bytes returns the raw key material for the jwt library.
func (k SigningKey) Bytes() []byte { return k.key }

// HS256Signer signs access tokens with HMAC-SHA256.
type HS256Signer struct {
	key SigningKey
}

// NewSignerHS256 creates an HS256 signer over the shared signing key.
func NewSignerHS256(key SigningKey) *HS256Signer {
	return &HS256Signer{key: key}
}

// Alg reports the JOSE algorithm name this signer produces.
func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign produces a compact serialized token for the given claims.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key.Bytes())
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
