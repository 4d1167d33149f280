package domain

import "time"

// Auth providers
const (
	AuthProviderPassword = "password"
	AuthProviderGoogle   = "google"
)

// Roles derived from the owner flag
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// User is a registered account. PasswordHash is empty for accounts created
// through Google sign-in.
type User struct {
	ID            string
	Email         string
	FullName      string
	ContactNumber string
	PasswordHash  string
	IsVenueOwner  bool
	Role          string
	AuthProvider  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// RoleFor maps the owner flag to a role name
func RoleFor(isVenueOwner bool) string {
	if isVenueOwner {
		return RoleOwner
	}
	return RoleUser
}
