package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *EntityHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/entities")

	// === Public Routes ===
	// Images are fetched by <img> tags that cannot send a bearer token.
	group.GET("/default-image", h.DefaultImage)
	group.GET("/:id/image", h.Image)

	// === Authenticated Routes ===
	authGroup := group.Group("")
	authGroup.Use(authMiddleware)
	{
		authGroup.GET("", h.List)
		authGroup.GET("/:id", h.Get)
	}

	// === Administration Routes ===
	adminGroup := authGroup.Group("")
	adminGroup.Use(adminMiddleware)
	{
		adminGroup.POST("", h.Create)
		adminGroup.POST("/testdata", h.SeedDemo)
		adminGroup.PUT("/default-image", h.UploadDefaultImage)
		adminGroup.PUT("/:id", h.Update)
		adminGroup.PUT("/:id/archive", h.Archive)
		adminGroup.PUT("/:id/unarchive", h.Unarchive)
		adminGroup.PUT("/:id/image", h.UploadImage)
		adminGroup.DELETE("/:id", h.Delete)
	}
}
