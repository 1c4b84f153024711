package models

import "time"

// User is an account in the marketplace. Roles: "user" and "admin"; admins
// can read the security event feed.
type User struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	DisplayName   string    `db:"display_name"`
	WalletAddress string    `db:"wallet_address"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
