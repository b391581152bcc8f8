package reports

import (
	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/access"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	reports := router.Group("/reports")
	reports.Use(authMiddleware, access.Require(access.AnyAuthenticated()))
	{
		reports.POST("", handler.Submit)
		reports.GET("", handler.List)
		reports.GET("/:id", handler.Get)
		reports.PATCH("/:id/status", access.Require(TransitionRequirement), handler.UpdateStatus)
	}
}
