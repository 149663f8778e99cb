package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, adminMiddleware, provisionMiddleware gin.HandlerFunc) {
	usersGroup := g.Group("/users")
	usersGroup.Use(authMiddleware)
	{
		usersGroup.GET("/me", provisionMiddleware, h.Me)
	}

	adminGroup := usersGroup.Group("")
	adminGroup.Use(adminMiddleware)
	{
		adminGroup.GET("", h.List)
		adminGroup.GET("/:id", h.Get)
	}
}
