package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sportevents/backend/internal/obs"
	"github.com/sportevents/backend/internal/service"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Auth           *service.AuthService
	Events         *service.EventService
	DB             Pinger
	Metrics        *obs.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
	Production     bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	// RequestLogger wraps Recovery so panicking requests are logged and
	// counted with the 500 Recovery writes.
	router.Use(
		RequestLogger(logger, cfg.Metrics),
		Recovery(logger),
		CORSMiddleware(cfg.AllowedOrigins, true),
		ErrorHandler(logger, cfg.Production),
	)

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/openapi.json", OpenAPIDoc)
	if cfg.DB != nil {
		router.GET("/healthz", Healthz(cfg.DB))
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := AuthMiddleware(cfg.Auth)
	api := router.Group("/api")

	authHandler := NewAuthHandler(cfg.Auth)
	auth := api.Group("/auth")
	{
		auth.POST("/registration", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	api.GET("/protected", requireAuth, Protected)

	if cfg.Events != nil {
		eventHandler := NewEventHandler(cfg.Events)
		events := api.Group("/events", requireAuth)
		{
			events.POST("", eventHandler.Create)
			events.GET("", eventHandler.List)
			events.GET("/:id", eventHandler.Get)
			events.PUT("/:id", eventHandler.Update)
			events.DELETE("/:id", eventHandler.Delete)
		}
	}

	return router
}
