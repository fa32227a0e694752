package domain

import "time"

// User is the stored account record. The refresh-session fields live on
// the user row: at most one refresh token is live per user at a time, and
// issuing a new one invalidates the prior value by overwrite.
type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string // argon2id encoded

	RefreshTokenHash string     // SHA-256 fingerprint; "" = no session issued
	RefreshExpiresAt *time.Time // nil while no session issued

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRefreshSession reports whether the user currently holds an issued
// refresh token.
func (u User) HasRefreshSession() bool {
	return u.RefreshTokenHash != "" && u.RefreshExpiresAt != nil
}
