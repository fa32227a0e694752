package service

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redgum-dev/gatehouse/internal/auth/domain"
	"github.com/redgum-dev/gatehouse/internal/auth/store"
	"github.com/redgum-dev/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/redgum-dev/gatehouse/pkg/cryptox"
	"github.com/redgum-dev/gatehouse/pkg/jwtx"
)

const (
	testSecret   = "s3cr3t-key-0123456789abcdef"
	testIssuer   = "app"
	testAudience = "app-users"
	testPassword = "p@ssw0rd-123"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper.key"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key, err := jwtx.NewSigningKey(testSecret)
	require.NoError(t, err)

	return &AuthService{
		Store:      st,
		Signer:     jwtx.NewSignerHS256(key),
		Verifier:   jwtx.NewVerifierHS256(key, testIssuer, testAudience),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 2 * time.Hour,
		Issuer:     testIssuer,
		Audience:   testAudience,
	}
}

func registerAndLogin(t *testing.T, s *AuthService, username string, roles ...string) (domain.User, *domain.TokenPair) {
	t.Helper()
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterRequest{
		Username:  username,
		Password:  testPassword,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Roles:     roles,
	})
	require.NoError(t, err)

	pair, err := s.Login(ctx, username, testPassword)
	require.NoError(t, err)
	require.NotNil(t, pair)
	return user, pair
}

func TestLoginIssuesTokenPair(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, pair := registerAndLogin(t, s, "alice", "admin", "user")

	claims, err := s.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Name)
	require.Equal(t, []string{"admin", "user"}, claims.Roles)
	require.Equal(t, testIssuer, claims.Issuer)
	require.Contains(t, claims.Audience, testAudience)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	raw, err := base64.StdEncoding.DecodeString(pair.RefreshToken)
	require.NoError(t, err)
	require.Len(t, raw, cryptox.RefreshTokenSize)

	// The stored session holds a fingerprint of the refresh token, never
	// the token itself.
	got, err := s.Store.Users().GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.True(t, got.HasRefreshSession())
	require.Equal(t, cryptox.FingerprintToken(pair.RefreshToken), got.RefreshTokenHash)
	require.NotEqual(t, pair.RefreshToken, got.RefreshTokenHash)
	require.WithinDuration(t, time.Now().Add(2*time.Hour), *got.RefreshExpiresAt, 5*time.Second)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	registerAndLogin(t, s, "bob")

	_, errUnknown := s.Login(ctx, "nobody", testPassword)
	require.ErrorIs(t, errUnknown, ErrAuthenticationFailed)

	_, errWrongPass := s.Login(ctx, "bob", "not-the-password")
	require.ErrorIs(t, errWrongPass, ErrAuthenticationFailed)

	require.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterRequest{Username: "carol", Password: testPassword})
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterRequest{Username: "carol", Password: testPassword})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterUnknownRoleRollsBack(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterRequest{
		Username: "dave",
		Password: testPassword,
		Roles:    []string{"admin", "no-such-role"},
	})
	require.ErrorIs(t, err, ErrUnknownRole)

	// User creation rolled back with the failed role assignment.
	_, err = s.Store.Users().GetUserByUsername(ctx, "dave")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshWithExpiredAccessToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, pair := registerAndLogin(t, s, "erin", "manager")

	// Re-sign an access token as if issued six minutes ago, so it expired
	// a minute ago while the refresh session is still live.
	expired, err := s.signAccess("erin", []string{"manager"}, time.Now().Add(-6*time.Minute))
	require.NoError(t, err)
	_, err = s.Verifier.Verify(expired)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	renewed, err := s.Refresh(ctx, domain.TokenPair{
		AccessToken:  expired,
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	// The refresh token survives unchanged; only the access token is new.
	require.Equal(t, pair.RefreshToken, renewed.RefreshToken)
	require.NotEqual(t, expired, renewed.AccessToken)

	claims, err := s.Verifier.Verify(renewed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "erin", claims.Name)
	require.Equal(t, []string{"manager"}, claims.Roles)
	require.True(t, claims.ExpiresAt.After(time.Now()))

	// The same pair keeps working until the session itself expires.
	again, err := s.Refresh(ctx, *renewed)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, again.RefreshToken)
}

func TestRefreshRejectsBadAccessTokens(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, pair := registerAndLogin(t, s, "frank")

	otherKey, err := jwtx.NewSigningKey("a-completely-different-secret!!")
	require.NoError(t, err)
	foreign, err := jwtx.NewSignerHS256(otherKey).Sign(
		jwtx.NewAccessClaims("frank", nil, time.Minute, testIssuer, testAudience, time.Now()),
	)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not.a.token",
		"foreign key": foreign,
	} {
		_, err := s.Refresh(ctx, domain.TokenPair{AccessToken: token, RefreshToken: pair.RefreshToken})
		require.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestRefreshRejectsBadSessions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, pair := registerAndLogin(t, s, "grace")

	// Token names a user that does not exist.
	ghost, err := s.signAccess("ghost", nil, time.Now())
	require.NoError(t, err)
	_, err = s.Refresh(ctx, domain.TokenPair{AccessToken: ghost, RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// Wrong refresh token for a live session.
	wrong, err := cryptox.GenerateRefreshToken()
	require.NoError(t, err)
	_, err = s.Refresh(ctx, domain.TokenPair{AccessToken: pair.AccessToken, RefreshToken: wrong})
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// Session expired.
	fp := cryptox.FingerprintToken(pair.RefreshToken)
	require.NoError(t, s.Store.Users().SetRefreshSession(ctx, user.ID, fp, time.Now().Add(-time.Minute)))
	_, err = s.Refresh(ctx, domain.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshRejectedAfterNewLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, first := registerAndLogin(t, s, "heidi")

	// A second login replaces the stored session.
	second, err := s.Login(ctx, "heidi", testPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = s.Refresh(ctx, *first)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	renewed, err := s.Refresh(ctx, *second)
	require.NoError(t, err)
	require.Equal(t, second.RefreshToken, renewed.RefreshToken)
}

func TestConcurrentRefreshes(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, pair := registerAndLogin(t, s, "ivan")

	const n = 4
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = s.Refresh(ctx, *pair)
		}()
	}
	wg.Wait()

	// The refresh token is not rotated, so parallel refreshes all succeed
	// and the stored session is left intact.
	for i, err := range results {
		require.NoError(t, err, "refresh %d", i)
	}

	got, err := s.Store.Users().GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.Equal(t, cryptox.FingerprintToken(pair.RefreshToken), got.RefreshTokenHash)
}
