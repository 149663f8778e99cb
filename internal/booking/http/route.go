package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *BookingHandler, authMiddleware, adminMiddleware, provisionMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/overview", h.Overview)
		group.GET("/count", h.Count)
		group.GET("/:id", h.Get)
		group.POST("", provisionMiddleware, h.Create)
		group.PUT("/:id/cancel", h.Cancel)
		group.PUT("/:id/return", h.Return)
		group.PUT("/:id/extend", h.Extend)
	}

	// === Administration Routes ===
	group.DELETE("/:id", adminMiddleware, h.Delete)

	g.GET("/entities/:id/bookings", authMiddleware, h.EntitySchedule)
}
