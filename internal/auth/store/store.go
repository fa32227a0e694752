package store

import (
	"context"
	"errors"
	"time"

	"github.com/redgum-dev/gatehouse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a compare-and-set update that lost against a
	// concurrent writer (e.g. two refresh-session updates for one user).
	ErrConflict = errors.New("store: concurrent modification")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (the refresh check-then-persist in particular).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByUsername is the lookup used during login and refresh.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserRoles returns the names of roles assigned to the user, in
	// assignment order.
	GetUserRoles(ctx context.Context, userID string) ([]string, error)

	// AddUserToRoles assigns the named roles to the user. Unknown role
	// names fail with ErrNotFound; duplicate assignment is an error the
	// caller surfaces unchanged.
	AddUserToRoles(ctx context.Context, userID string, roles []string) error

	// SetRefreshSession overwrites the user's refresh-token fingerprint
	// and absolute expiry (the login path, which rotates the session).
	SetRefreshSession(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error

	// PersistRefreshSession writes tokenHash only if the stored
	// fingerprint still equals expectedHash, leaving the expiry untouched
	// (the refresh path, which re-issues the access token only). Returns
	// ErrConflict when a concurrent writer changed the session first.
	PersistRefreshSession(ctx context.Context, userID string, tokenHash, expectedHash string) error
}

type Roles interface {
	// CreateRole inserts a new role (id is ULID).
	CreateRole(ctx context.Context, r domain.Role) error

	// GetRoleByName fetches a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)
}
