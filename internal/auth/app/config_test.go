package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cr3t-key-0123456789abcdef")
	t.Setenv("JWT_VALID_ISSUER", "app")
	t.Setenv("JWT_VALID_AUDIENCE", "app-users")
	t.Setenv("JWT_EXPIRES", "")
	t.Setenv("REFRESH_TTL", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "app", cfg.Issuer)
	require.Equal(t, "app-users", cfg.Audience)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 2*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadConfigExpiresMinutes(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cr3t-key-0123456789abcdef")
	t.Setenv("JWT_EXPIRES", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
}

func TestLoadConfigRejectsNonNumericExpires(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cr3t-key-0123456789abcdef")

	for _, bad := range []string{"five", "5m", "-1", "0"} {
		t.Setenv("JWT_EXPIRES", bad)
		_, err := LoadConfig()
		require.Error(t, err, "JWT_EXPIRES=%s", bad)
	}
}

func TestLoadConfigRefreshTTL(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cr3t-key-0123456789abcdef")
	t.Setenv("REFRESH_TTL", "45m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 45*time.Minute, cfg.RefreshTTL)
}
