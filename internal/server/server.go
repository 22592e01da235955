// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"trackback/internal/cache"
	"trackback/internal/config"
	"trackback/internal/database"
	"trackback/internal/facebook"
	"trackback/internal/middleware"
	"trackback/internal/models"
	"trackback/internal/notify"
	"trackback/internal/repository"
	"trackback/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo        repository.UserRepository
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
	supportRepo     repository.SupportRepository

	mailer *notify.Mailer

	userService    *service.UserService
	postService    *service.PostService
	claimService   *service.ClaimService
	adminService   *service.AdminService
	supportService *service.SupportService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Used by tests and bootstrap layers that establish
// DB/Redis themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	supportRepo := repository.NewSupportRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("trackback-api")

	mailer := notify.NewMailer(cfg)

	// Facebook publishing is optional; nil when no page token is set.
	var publisher service.FacebookPublisher
	if fb := facebook.NewClient(cfg); fb != nil {
		publisher = fb
	}

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  prom,
		userRepo:        userRepo,
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		supportRepo:     supportRepo,
		mailer:          mailer,
	}

	server.userService = service.NewUserService(userRepo)
	server.postService = service.NewPostService(postRepo, userRepo)
	server.claimService = service.NewClaimService(interactionRepo, postRepo, userRepo, mailer)
	server.adminService = service.NewAdminService(userRepo, postRepo, interactionRepo, publisher)
	server.supportService = service.NewSupportService(supportRepo, mailer)

	// JWT middleware config plus the live block re-check.
	middleware.InitMiddleware(cfg, userRepo.IsBlocked)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// OpenTelemetry spans
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid so the ID is available)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. the
	// limiter) so browser clients still get CORS headers on errors.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/admin/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "admin_login"), s.AdminLogin)
	auth.Post("/admin/refresh", s.Refresh)

	// User routes
	users := api.Group("/users")
	users.Post("/sync", middleware.RateLimit(
		s.redis, 20, 5*time.Minute, "user_sync"), s.SyncUser)
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Get("/me/posts", middleware.AuthRequired, s.GetMyPosts)
	users.Get("/:email", middleware.AuthRequired, s.GetUserByEmail)

	// Public post routes (browse/search)
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "device_search"), s.SearchDevice)
	posts.Get("/user/:id", s.GetPostsByUser)
	posts.Get("/:id", s.GetPost)

	// Protected post routes
	posts.Post("/", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Put("/:id", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)

	// Found-report (claim) routes. Filing a report is public: finders
	// do not need an account.
	interactions := api.Group("/interactions")
	interactions.Post("/found", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "report_found"), s.ReportFound)
	interactions.Post("/:id/confirm", middleware.AuthRequired, s.ConfirmClaim)
	interactions.Get("/user/:email/claims", middleware.AuthRequired, s.GetClaimsForOwner)
	interactions.Get("/user/:email/found", middleware.AuthRequired, s.GetFoundByFinder)

	// Support routes
	support := api.Group("/support")
	support.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "support"), s.SubmitSupport)
	support.Get("/", middleware.AuthRequired, middleware.RequireAtLeast(models.RoleAdmin), s.ListSupport)
	support.Put("/:id/status", middleware.AuthRequired, middleware.RequireAtLeast(models.RoleAdmin), s.UpdateSupportStatus)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthRequired, middleware.RequireAtLeast(models.RoleAdmin))
	admin.Get("/stats", s.GetAdminStats)
	admin.Get("/users", s.GetAdminUsers)
	admin.Put("/users/:id/block", s.SetUserBlocked)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Get("/posts", s.GetAdminPosts)
	admin.Put("/posts/:id/hide", s.SetPostVisibility)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Post("/posts/:id/approve-facebook", s.ApproveFacebook)

	// Owner-only admin account management
	owners := admin.Group("/admins", middleware.RequireAtLeast(models.RoleOwner))
	owners.Post("/", s.CreateAdmin)
	owners.Delete("/:id", s.RemoveAdmin)
	owners.Post("/:id/reset-password", s.ResetAdminPassword)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API stays up without Redis; caching and rate limiting
		// just degrade.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown flushes in-flight background work.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mailer.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
