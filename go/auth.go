package storefrontserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

// Authenticator resolves a bearer token to the caller it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Actor, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved actor on the request context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" || auth == nil {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("bearer token is required"))
			c.Abort()
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			apierrors.RespondError(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := identity.FromContext(c.Request.Context())
		if !ok {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("bearer token is required"))
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			apierrors.Respond(c, apierrors.ErrForbidden.WithDetail("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentActor returns the authenticated caller, or the anonymous actor on public routes.
func currentActor(c *gin.Context) identity.Actor {
	actor, _ := identity.FromContext(c.Request.Context())
	return actor
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
