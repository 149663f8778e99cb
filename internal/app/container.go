package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/explore-grabby/booking-backend/internal/api"
	"github.com/explore-grabby/booking-backend/internal/auth"
	"github.com/explore-grabby/booking-backend/internal/booking"
	"github.com/explore-grabby/booking-backend/internal/calendar"
	"github.com/explore-grabby/booking-backend/internal/entity"
	"github.com/explore-grabby/booking-backend/internal/events"
	"github.com/explore-grabby/booking-backend/internal/image"
	"github.com/explore-grabby/booking-backend/internal/pkg/storage"
	"github.com/explore-grabby/booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
// Optional infrastructure left nil falls back to an in-process implementation.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	AdminRole    string

	JWTSecret string
	JWTTTL    time.Duration

	MaxExtensionDays int
	SoonOverdueDays  int
	CacheTTL         time.Duration

	DBPool    *pgxpool.Pool    // nil: in-memory repositories
	Redis     *redis.Client    // nil: no catalog cache
	Publisher events.Publisher // nil: events are dropped
	Storage   storage.Storage  // required
	Clock     calendar.Clock   // nil: system clock in UTC
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	EntityService  entity.Service
	BookingService booking.Service
	Ledger         *booking.Ledger
	Clock          calendar.Clock
	Publisher      events.Publisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clock := cfg.Clock
	if clock == nil {
		clock = calendar.SystemClock{Location: time.UTC}
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Repositories
	var (
		userRepo    user.Repository
		entityRepo  entity.Repository
		bookingRepo booking.Repository
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		entityRepo = entity.NewPgxRepository(cfg.DBPool)
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
	} else {
		userRepo = user.NewMemoryRepository()
		entityRepo = entity.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
	}

	var cache entity.Cache = entity.NopCache{}
	if cfg.Redis != nil {
		cache = entity.NewRedisCache(cfg.Redis, cfg.CacheTTL)
	}

	// User Module
	userService := user.NewService(userRepo)

	// Entity Module
	entityService := entity.NewService(entityRepo, cache)
	imageService := image.NewService(cfg.Storage, entityService)

	// Booking Module
	bookingService := booking.NewService(bookingRepo, entityService, clock, publisher, booking.Config{
		MaxExtensionDays: cfg.MaxExtensionDays,
		SoonOverdueDays:  cfg.SoonOverdueDays,
	})

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		AdminRole:      cfg.AdminRole,
		UserService:    userService,
		EntityService:  entityService,
		ImageService:   imageService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		EntityService:  entityService,
		BookingService: bookingService,
		Ledger:         booking.NewLedger(bookingRepo),
		Clock:          clock,
		Publisher:      publisher,
	}
}
