package access

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

// Require is a Gin middleware that admits the request only when the
// identity placed by the auth middleware satisfies req.
func Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := auth.CurrentIdentity(c)

		decision := Authorize(identity, req)
		if decision.Allowed {
			c.Next()
			return
		}

		switch decision.Reason {
		case ReasonNotAuthenticated:
			response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		case ReasonAlreadyAuthed:
			response.Forbidden(c, "Already authenticated", "ALREADY_AUTHENTICATED")
		default:
			response.Forbidden(c, "You are not allowed to perform this action", "FORBIDDEN")
		}
		c.Abort()
	}
}
