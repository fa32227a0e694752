package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwtx: signing secret is empty")

	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates tokens signed with HMAC-SHA256 against the shared
// symmetric key plus expected issuer and audience.
type HS256Verifier struct {
	key    SigningKey
	issuer string
	aud    string
}

// NewVerifierHS256 creates a verifier over the shared signing key.
func NewVerifierHS256(key SigningKey, issuer, audience string) *HS256Verifier {
	return &HS256Verifier{key: key, issuer: issuer, aud: audience}
}

// Verify validates the token string fully (signature, algorithm, issuer,
// audience, and expiry) and returns its parsed claims.
func (v *HS256Verifier) Verify(tokenStr string) (*Claims, error) {
	claims, err := v.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyExpired validates signature, algorithm, issuer, and audience but
// deliberately skips the expiry check. It exists for the refresh flow where
// the presented access token is expected to already be expired; only the
// stored refresh session governs whether re-issuance is allowed.
func (v *HS256Verifier) VerifyExpired(tokenStr string) (*Claims, error) {
	return v.parse(tokenStr)
}

func (v *HS256Verifier) parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		// Claim checks run manually below so the expired path can opt out
		// of the expiry check without losing issuer/audience enforcement.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		// Pin the declared algorithm to HS256. The key is only ever handed
		// out for that exact method, so a token cannot downgrade or confuse
		// the verifier into treating the shared secret as something else.
		alg, _ := t.Header["alg"].(string)
		if !strings.EqualFold(alg, jwt.SigningMethodHS256.Alg()) {
			return nil, ErrAlgMismatch
		}
		return v.key.Bytes(), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgMismatch):
			return nil, ErrAlgMismatch
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return nil, err
	}

	return claims, nil
}
