package service

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/venuebook/venuebook/internal/domain"
)

// GoogleClaims are the identity claims extracted from a verified Google ID
// token.
type GoogleClaims struct {
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleVerifier validates Google ID tokens
type GoogleVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleClaims, error)
}

// APIGoogleVerifier verifies tokens against Google's public keys with the
// configured client id as the expected audience.
type APIGoogleVerifier struct {
	clientID string
}

var _ GoogleVerifier = (*APIGoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier bound to a client id
func NewGoogleVerifier(clientID string) *APIGoogleVerifier {
	return &APIGoogleVerifier{clientID: clientID}
}

// Verify validates the token signature, expiry and audience
func (v *APIGoogleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTokenInvalid, err)
	}

	claims := &GoogleClaims{}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}
