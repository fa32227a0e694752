package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/redgum-dev/gatehouse/internal/auth/domain"
	"github.com/redgum-dev/gatehouse/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, first_name, last_name, email, password_hash,
	refresh_token_hash, refresh_expires_at, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, email, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *usersRepo) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role_name
		FROM user_roles
		WHERE user_id = ?
		ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func (r *usersRepo) AddUserToRoles(ctx context.Context, userID string, roles []string) error {
	for _, role := range roles {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_name)
			VALUES (?, ?)`,
			userID, role,
		)
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *usersRepo) SetRefreshSession(
	ctx context.Context,
	userID string,
	tokenHash string,
	expiresAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = ?, refresh_expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		tokenHash, expiresAt, userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res, store.ErrNotFound)
}

func (r *usersRepo) PersistRefreshSession(
	ctx context.Context,
	userID string,
	tokenHash, expectedHash string,
) error {
	// Compare-and-set against the fingerprint observed earlier in the
	// request. A concurrent login that rotated the session between our
	// read and this write makes the WHERE clause miss.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND refresh_token_hash = ?`,
		tokenHash, userID, expectedHash,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res, store.ErrConflict)
}

func requireRowAffected(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u           domain.User
		refreshHash sql.NullString
		refreshExp  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&refreshHash, &refreshExp, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.RefreshTokenHash = mapNullString(refreshHash)
	u.RefreshExpiresAt = mapNullTimePtr(refreshExp)
	return u, nil
}
