package handlers

import (
	"context"

	"bms_telemetry/internal/config"
	"bms_telemetry/internal/logger"
	"bms_telemetry/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tunes the router middleware. The zero value disables CORS and rate limiting.
type Options struct {
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	DB        Pinger
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), h.requestLogMiddleware)
	if len(h.opts.CORS.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(h.opts.CORS))
	}
	if h.opts.RateLimit.RPS > 0 {
		router.Use(rateLimitMiddleware(newRateLimiter(h.opts.RateLimit.RPS, h.opts.RateLimit.Burst), h.log))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	api := router.Group("/api")
	h.registerAuthRoutes(api)
	h.registerScopedRoutes(api)

	return router
}

func (h *Handler) registerAuthRoutes(api *gin.RouterGroup) {
	api.POST("/register", h.register)
	api.POST("/login", h.login)
}

func (h *Handler) registerScopedRoutes(api *gin.RouterGroup) {
	scoped := api.Group("", h.principalMiddleware)
	{
		scoped.GET("/me", h.me)
		h.registerBatteryRoutes(scoped)
		h.registerNotificationRoutes(scoped)
	}
}

func (h *Handler) registerBatteryRoutes(api *gin.RouterGroup) {
	batteries := api.Group("/batteries")
	{
		batteries.GET("", h.listBatteries)
		batteries.GET("/:id", h.getBattery)
		batteries.GET("/:id/historical", h.getHistory)
		batteries.GET("/:id/logs", h.getDeviceLog)
		batteries.GET("/:id/route", h.getRoute)
		batteries.GET("/:id/export", h.exportReadings)
	}
}

func (h *Handler) registerNotificationRoutes(api *gin.RouterGroup) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.getNotifications)
		notifications.POST("/:type/:id/read", h.markRead)
	}
}
