// Package server contains the HTTP handlers for the recipe API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "pantry/docs" // swagger docs
	"pantry/internal/config"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	imageService    *service.ImageService
	userService     *service.UserService
	taxonomyService *service.TaxonomyService
	recipeService   *service.RecipeService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, which disables the Redis-backed rate limits.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	images := service.NewImageService(cfg)

	return &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("pantry-api"),
		imageService:    images,
		userService:     service.NewUserService(userRepo, images),
		taxonomyService: service.NewTaxonomyService(tagRepo, ingredientRepo),
		recipeService:   service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, images),
	}, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Pantry API",
		BodyLimit:    int(s.imageService.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape handlers, including Fiber's own
// routing errors, in the standard error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		var appErr *models.AppError
		switch fe.Code {
		case fiber.StatusNotFound:
			appErr = &models.AppError{Code: models.CodeNotFound, Message: fe.Message}
		case fiber.StatusMethodNotAllowed:
			appErr = models.NewMethodNotAllowedError(c.Method())
		case fiber.StatusUnauthorized:
			appErr = models.NewUnauthorizedError(fe.Message)
		default:
			if fe.Code < fiber.StatusInternalServerError {
				appErr = models.NewValidationError(fe.Message)
			} else {
				appErr = models.NewInternalError(err)
			}
		}
		return models.RespondWithError(c, fe.Code, appErr)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	if prefix, ok := s.mediaPrefix(); ok {
		app.Static(prefix, s.imageService.MediaRoot(), fiber.Static{ByteRange: true})
	}

	// Account routes
	user := app.Group("/user")
	user.Post("/create/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "user_create"), s.CreateUser)
	user.Post("/token/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.CreateToken)

	me := user.Group("/me", s.AuthRequired())
	me.Get("/", s.GetMe)
	me.Patch("/", s.UpdateMe)
	me.All("/", s.MethodNotAllowed)

	user.Post("/upload-image/", s.AuthRequired(), s.UploadUserImage)

	recipe := app.Group("/recipe", s.AuthRequired())

	recipes := recipe.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	recipes.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_recipe"), s.CreateRecipe)
	// Specific /:id/:resource routes before the generic /:id route
	recipes.Post("/:id/upload-image/", s.UploadRecipeImage)
	recipes.Get("/:id/", s.GetRecipe)
	recipes.Put("/:id/", s.ReplaceRecipe)
	recipes.Patch("/:id/", s.PatchRecipe)

	tags := recipe.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Post("/", s.CreateTag)

	ingredients := recipe.Group("/ingredients")
	ingredients.Get("/", s.ListIngredients)
	ingredients.Post("/", s.CreateIngredient)

	app.Get("/admin/dashboard", s.AuthRequired(), s.StaffRequired(), monitor.New(monitor.Config{
		Title: "Pantry API Metrics Dashboard",
	}))
}

// mediaPrefix returns the route prefix uploaded files are served under. An
// absolute MEDIA_URL points at another host, so nothing is mounted locally.
func (s *Server) mediaPrefix() (string, bool) {
	url := s.config.MediaURL
	if url == "" {
		url = service.DefaultMediaURL
	}
	if !strings.HasPrefix(url, "/") {
		return "", false
	}
	prefix := strings.TrimSuffix(url, "/")
	if prefix == "" {
		return "", false
	}
	return prefix, true
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// Start serves the application until Shutdown is called.
func (s *Server) Start() error {
	app := s.app
	if app == nil {
		app = s.NewApp()
	}
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
