package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRefreshToken(t *testing.T) {
	t.Parallel()

	first, err := GenerateRefreshToken()
	require.NoError(t, err)
	second, err := GenerateRefreshToken()
	require.NoError(t, err)

	// Sequential tokens never collide.
	require.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		raw, err := base64.StdEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, RefreshTokenSize)
	}
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-opaque-token")
	require.Equal(t, fp, FingerprintToken("some-opaque-token"))
	require.NotEqual(t, fp, FingerprintToken("some-other-token"))

	// SHA-256 output, base64url without padding.
	raw, err := base64.RawURLEncoding.DecodeString(fp)
	require.NoError(t, err)
	require.Len(t, raw, 32)
}
