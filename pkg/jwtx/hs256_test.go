package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "s3cr3t-key-0123456789abcdef"
	testIssuer   = "app"
	testAudience = "app-users"
)

func newTestKey(t *testing.T) SigningKey {
	t.Helper()
	key, err := NewSigningKey(testSecret)
	require.NoError(t, err)
	return key
}

func TestNewSigningKeyRejectsEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewSigningKey("")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	signer := NewSignerHS256(key)
	now := time.Now()

	claims := NewAccessClaims("alice", []string{"admin"}, 5*time.Minute, testIssuer, testAudience, now)
	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier := NewVerifierHS256(key, testIssuer, testAudience)
	got, err := verifier.Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Name)
	require.Equal(t, []string{"admin"}, got.Roles)
	require.Equal(t, testIssuer, got.Issuer)
	require.WithinDuration(t, now.Add(5*time.Minute), got.ExpiresAt.Time, 2*time.Second)
}

func TestVerifyRejectsAlteredExpectations(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	signer := NewSignerHS256(key)
	tokenStr, err := signer.Sign(
		NewAccessClaims("alice", nil, 5*time.Minute, testIssuer, testAudience, time.Now()),
	)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewSigningKey("a-completely-different-secret!!")
		require.NoError(t, err)

		_, err = NewVerifierHS256(other, testIssuer, testAudience).Verify(tokenStr)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewVerifierHS256(key, "other-app", testAudience).Verify(tokenStr)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		_, err := NewVerifierHS256(key, testIssuer, "other-users").Verify(tokenStr)
		require.ErrorIs(t, err, ErrAudience)
	})
}

func TestVerifyExpiredRecoversPrincipal(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	signer := NewSignerHS256(key)
	verifier := NewVerifierHS256(key, testIssuer, testAudience)

	// Issue a token that expired an hour ago.
	issuedAt := time.Now().Add(-65 * time.Minute)
	tokenStr, err := signer.Sign(
		NewAccessClaims("alice", []string{"admin", "auditor"}, 5*time.Minute, testIssuer, testAudience, issuedAt),
	)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr)
	require.ErrorIs(t, err, ErrExpired)

	got, err := verifier.VerifyExpired(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Name)
	require.Equal(t, []string{"admin", "auditor"}, got.Roles)
}

func TestVerifyExpiredStillEnforcesSignatureAndClaims(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	signer := NewSignerHS256(key)
	verifier := NewVerifierHS256(key, testIssuer, testAudience)

	t.Run("tampered signature", func(t *testing.T) {
		tokenStr, err := signer.Sign(
			NewAccessClaims("alice", nil, time.Minute, testIssuer, testAudience, time.Now()),
		)
		require.NoError(t, err)

		tampered := tokenStr[:len(tokenStr)-2] + "xx"
		_, err = verifier.VerifyExpired(tampered)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tokenStr, err := signer.Sign(
			NewAccessClaims("alice", nil, time.Minute, "rogue-issuer", testAudience, time.Now()),
		)
		require.NoError(t, err)

		_, err = verifier.VerifyExpired(tokenStr)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		tokenStr, err := signer.Sign(
			NewAccessClaims("alice", nil, time.Minute, testIssuer, "rogue-audience", time.Now()),
		)
		require.NoError(t, err)

		_, err = verifier.VerifyExpired(tokenStr)
		require.ErrorIs(t, err, ErrAudience)
	})

	t.Run("different algorithm", func(t *testing.T) {
		claims := NewAccessClaims("alice", nil, time.Minute, testIssuer, testAudience, time.Now())
		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = verifier.VerifyExpired(hs512)
		require.ErrorIs(t, err, ErrAlgMismatch)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.VerifyExpired("not-a-jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestRolesPreserveOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	roles := []string{"auditor", "admin", "auditor"}

	tokenStr, err := NewSignerHS256(key).Sign(
		NewAccessClaims("bob", roles, time.Minute, testIssuer, testAudience, time.Now()),
	)
	require.NoError(t, err)

	got, err := NewVerifierHS256(key, testIssuer, testAudience).Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, roles, got.Roles)
}
