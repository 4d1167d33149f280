package dto

import "github.com/venuebook/venuebook/internal/domain"

// SignupRequest is the payload for password registration
type SignupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	ContactNumber string `json:"contact_number"`
	IsVenueOwner  *bool  `json:"is_venue_owner"`
}

// LoginRequest is the payload for password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a Google ID token plus optional profile hints
// used when the account is created on first sign-in.
type GoogleLoginRequest struct {
	IDToken       string `json:"id_token"`
	ContactNumber string `json:"contact_number"`
	IsVenueOwner  bool   `json:"is_venue_owner"`
}

// ForgotPasswordRequest asks for a password-reset link
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest redeems a reset token
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Profile is the public view of an account
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	ContactNumber string `json:"contact_number"`
	IsVenueOwner  bool   `json:"is_venue_owner"`
	Role          string `json:"role"`
	AuthProvider  string `json:"auth_provider"`
}

// AuthResponse is returned by signup, login and Google sign-in
type AuthResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// ProfileResponse wraps a profile for /auth/me
type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

// MessageResponse carries a human-readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileFromUser maps a domain user to its public profile
func ProfileFromUser(u *domain.User) Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		ContactNumber: u.ContactNumber,
		IsVenueOwner:  u.IsVenueOwner,
		Role:          u.Role,
		AuthProvider:  u.AuthProvider,
	}
}
