// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/AiiMS-Group/landbot/app/dto"
	"github.com/AiiMS-Group/landbot/app/handlers"
	"github.com/AiiMS-Group/landbot/app/middleware"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app          *fiber.App
	serverCfg    config.ServerConfig
	adsHandler   handlers.AdsHandlerInterface
	statsHandler handlers.StatisticsHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(serverCfg config.ServerConfig, adsHandler handlers.AdsHandlerInterface, statsHandler handlers.StatisticsHandlerInterface) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Marketing Operations API",
		ServerHeader: "landbot",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:          app,
		serverCfg:    serverCfg,
		adsHandler:   adsHandler,
		statsHandler: statsHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	// Operational endpoints, outside the API key guard
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	// Webhook rate limit, keyed by IP
	api.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	api.Use(middleware.APIKeyAuth(r.serverCfg.APIKey))

	ads := api.Group("/ads")
	ads.Post("/spending", r.adsHandler.Spending)
	ads.Post("/enable", r.adsHandler.EnableAds)
	ads.Post("/pause", r.adsHandler.PauseAds)
	ads.Post("/budget/campaigns", r.adsHandler.Campaigns)
	ads.Post("/budget/pause", r.adsHandler.PauseBudget)

	api.Post("/statistics", r.statsHandler.Report)

	r.app.Use(r.notFoundHandler)
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	r.app.Use(recover.New())

	r.app.Use(middleware.Metrics())
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"service":   "landbot-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "Request failed",
		Error: dto.ErrorDetail{
			Code: "REQUEST_FAILED",
		},
	})
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "req-" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return hex.EncodeToString(b)
}
