package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redgum-dev/gatehouse/internal/auth/domain"
	"github.com/redgum-dev/gatehouse/internal/auth/store"
	"github.com/redgum-dev/gatehouse/pkg/cryptox"
	"github.com/redgum-dev/gatehouse/pkg/idx"
	"github.com/redgum-dev/gatehouse/pkg/jwtx"
	"github.com/redgum-dev/gatehouse/pkg/slogx"
)

var (
	// ErrAuthenticationFailed covers every login failure mode. Unknown
	// usernames and wrong passwords are indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidToken means the access token presented for refresh could
	// not be verified (bad signature, issuer, audience or algorithm).
	ErrInvalidToken = errors.New("invalid access token")

	// ErrInvalidRefresh covers every refresh failure past token
	// verification: unknown user, no session, mismatched or expired
	// refresh token, or a session replaced by a concurrent login.
	ErrInvalidRefresh = errors.New("invalid refresh request")

	ErrUsernameTaken = errors.New("username already taken")
	ErrUnknownRole   = errors.New("unknown role")
)

// RegisterRequest carries the fields needed to create a new user account.
type RegisterRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Roles     []string
}

// AuthService owns the access/refresh token lifecycle: credential
// validation, token pair issuance, account registration and refresh.
type AuthService struct {
	Store    store.Store
	Signer   *jwtx.HS256Signer
	Verifier *jwtx.HS256Verifier

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Audience   string
}

// Login validates the credentials and, on success, issues a fresh token
// pair and stores the refresh session against the user. All credential
// failures collapse into ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	user, err := s.validateCredentials(ctx, username, password)
	if err != nil {
		l.Info("login rejected", "username", username)
		return nil, err
	}

	roles, err := s.Store.Users().GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	access, err := s.signAccess(user.Username, roles, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := cryptox.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	fp := cryptox.FingerprintToken(refresh)
	if err := s.Store.Users().SetRefreshSession(ctx, user.ID, fp, now.Add(s.RefreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh session: %w", err)
	}

	l.Info("login succeeded", "username", user.Username, "user_id", user.ID)
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Register creates a new user account and assigns the requested roles.
// User creation and role assignment happen in one transaction so a bad
// role name never leaves a half-registered account behind.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if len(req.Roles) == 0 {
			return nil
		}
		if err := tx.Users().AddUserToRoles(ctx, user.ID, req.Roles); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownRole
			}
			return fmt.Errorf("assign roles: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user registered", "username", user.Username, "user_id", user.ID, "roles", req.Roles)
	return user, nil
}

// Refresh exchanges an expired (or still valid) access token plus the
// matching refresh token for a new access token. The refresh token and
// its expiry are left untouched, so the pair stays usable until the
// session expires or a new login replaces it.
//
// The refresh session is re-persisted with a compare-and-set on the
// stored fingerprint. If a concurrent login swapped the session between
// our read and write the update matches zero rows and the refresh is
// rejected rather than silently resurrecting the old session.
func (s *AuthService) Refresh(ctx context.Context, pair domain.TokenPair) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	claims, err := s.Verifier.VerifyExpired(pair.AccessToken)
	if err != nil {
		l.Info("refresh rejected", "reason", "token verification", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	fp := cryptox.FingerprintToken(pair.RefreshToken)

	var out *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByUsername(ctx, claims.Name)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefresh
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if !user.HasRefreshSession() {
			return ErrInvalidRefresh
		}
		if subtle.ConstantTimeCompare([]byte(user.RefreshTokenHash), []byte(fp)) != 1 {
			return ErrInvalidRefresh
		}
		if !user.RefreshExpiresAt.After(now) {
			return ErrInvalidRefresh
		}

		roles, err := tx.Users().GetUserRoles(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}

		access, err := s.signAccess(user.Username, roles, now)
		if err != nil {
			return fmt.Errorf("sign access token: %w", err)
		}

		if err := tx.Users().PersistRefreshSession(ctx, user.ID, fp, fp); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidRefresh
			}
			return fmt.Errorf("persist refresh session: %w", err)
		}

		out = &domain.TokenPair{AccessToken: access, RefreshToken: pair.RefreshToken}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			l.Info("refresh rejected", "username", claims.Name)
		}
		return nil, err
	}

	l.Info("refresh succeeded", "username", claims.Name)
	return out, nil
}

func (s *AuthService) validateCredentials(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAuthenticationFailed
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrAuthenticationFailed
	}
	return user, nil
}

func (s *AuthService) signAccess(name string, roles []string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(name, roles, s.AccessTTL, s.Issuer, s.Audience, now)
	return s.Signer.Sign(claims)
}
