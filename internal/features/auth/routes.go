package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the identity service routes. limiter guards
// the credential endpoints and may be nil.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc, limiter gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		if limiter != nil {
			auth.POST("/register", limiter, handler.Register)
			auth.POST("/login", limiter, handler.Login)
		} else {
			auth.POST("/register", handler.Register)
			auth.POST("/login", handler.Login)
		}
		auth.GET("/me", authMiddleware, handler.Me)
	}
}
