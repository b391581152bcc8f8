package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/jwt"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

const identityKey = "identity"

// SetIdentity places the authenticated identity on the request context.
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
	c.Set("userID", identity.ID)
	c.Set("email", identity.Email)
}

// CurrentIdentity returns the identity placed by the bearer middleware.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok && identity != nil
}

// NewAuthMiddleware creates a Gin middleware for JWT authentication.
// Tokens are checked against clk, the clock that issues them. With
// optional set, requests without a usable token pass through anonymously
// instead of being rejected.
func NewAuthMiddleware(repo UserStore, cfg *jwt.Config, clk clock.Clock, optional bool) gin.HandlerFunc {
	if clk == nil {
		clk = clock.System()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if optional {
				c.Next()
				return
			}
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			if optional {
				c.Next()
				return
			}
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(fields[1], clk.Now(), cfg)
		if err != nil {
			if optional {
				c.Next()
				return
			}
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		// Role comes from the stored user, not the token, so demotions apply immediately.
		user, err := repo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if optional {
				c.Next()
				return
			}
			response.Unauthorized(c, "User not found", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		identity := user.ToIdentity()
		SetIdentity(c, &identity)
		c.Next()
	}
}
