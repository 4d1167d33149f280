// Package middleware holds the HTTP middleware chain: authentication,
// owner gating and idempotent writes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/response"
)

// PrincipalKey is the gin context key the authenticated principal is stored
// under.
const PrincipalKey = "principal"

// Authenticator verifies bearer tokens into principals
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*domain.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// principal for downstream handlers.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "Missing or invalid Authorization header.")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if domain.IsUnavailableError(err) {
				response.Error(c, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Error())
			} else {
				response.Error(c, http.StatusUnauthorized, "Invalid token.")
			}
			c.Abort()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireOwner rejects authenticated callers without the venue-owner
// capability. Must run after RequireAuth.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			response.Error(c, http.StatusUnauthorized, "Missing or invalid Authorization header.")
			c.Abort()
			return
		}
		if !principal.IsVenueOwner {
			response.Error(c, http.StatusForbidden, "Owner access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal, or nil outside an
// authenticated route.
func GetPrincipal(c *gin.Context) *domain.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	principal, ok := v.(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}
