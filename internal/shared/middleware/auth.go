package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/apperror"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"
)

const (
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
)

// TokenVerifier parses access tokens. *jwt.Manager implements it.
type TokenVerifier interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// Auth rejects requests without a valid, unrevoked bearer token.
func Auth(tokens TokenVerifier, revoked kv.Store) gin.HandlerFunc {
	return authenticate(tokens, revoked, true)
}

// OptionalAuth lets anonymous requests through but still rejects a bad token.
func OptionalAuth(tokens TokenVerifier, revoked kv.Store) gin.HandlerFunc {
	return authenticate(tokens, revoked, false)
}

func authenticate(tokens TokenVerifier, revoked kv.Store, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				response.Unauthorized(c, "Unauthenticated.")
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "Unauthenticated.")
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Unauthenticated.")
			return
		}

		isRevoked, err := revoked.Exists(c.Request.Context(), jwt.RevocationKey(claims.ID))
		if err != nil {
			response.Error(c, apperror.Internal(fmt.Errorf("check token revocation: %w", err)))
			return
		}
		if isRevoked {
			response.Unauthorized(c, "Unauthenticated.")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyActor, &authz.Actor{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// ActorFrom returns the authenticated actor, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *authz.Actor {
	v, ok := c.Get(ContextKeyActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*authz.Actor)
	return actor
}

// ClaimsFrom returns the verified token claims set by Auth.
func ClaimsFrom(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// Authorize aborts with 403 unless the gate allows action on resource.
func Authorize(gate authz.Gate, action authz.Action, resource authz.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if !gate.CanPerform(actor, action, resource) {
			if actor == nil {
				response.Unauthorized(c, "Unauthenticated.")
				return
			}
			response.Forbidden(c, "Permission denial!")
			return
		}
		c.Next()
	}
}
