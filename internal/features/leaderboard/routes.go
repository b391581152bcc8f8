package leaderboard

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/access"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	board := router.Group("/leaderboard")
	{
		board.GET("", handler.List)
		board.GET("/me", authMiddleware, access.Require(access.AnyAuthenticated()), handler.Me)
	}
}
