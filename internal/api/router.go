package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/explore-grabby/booking-backend/internal/auth"
	"github.com/explore-grabby/booking-backend/internal/booking"
	bookingHttp "github.com/explore-grabby/booking-backend/internal/booking/http"
	"github.com/explore-grabby/booking-backend/internal/entity"
	entityHttp "github.com/explore-grabby/booking-backend/internal/entity/http"
	"github.com/explore-grabby/booking-backend/internal/image"
	"github.com/explore-grabby/booking-backend/internal/user"
	userHttp "github.com/explore-grabby/booking-backend/internal/user/http"
)

// Config holds the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	AdminRole    string

	UserService    user.Service
	EntityService  entity.Service
	ImageService   image.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminRole := cfg.AdminRole
	if adminRole == "" {
		adminRole = "admin"
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks the token carries the admin role.
	adminMiddleware := auth.RequireRole(adminRole)
	// provisionMiddleware: Upserts the caller's user record from its claims.
	provisionMiddleware := userHttp.RequireProvisioned(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService)
	entityHandler := entityHttp.NewHandler(cfg.EntityService, cfg.ImageService, adminRole)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, adminRole)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware, provisionMiddleware)
		entityHttp.RegisterRoutes(v1, entityHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware, provisionMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
