package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/orrn/printq/internal/api/handlers"
	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/config"
	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/logging"
	"github.com/orrn/printq/internal/metrics"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Config   *config.Config
	Services *core.Services
	Settings handlers.SettingsLister
	Auth     *middleware.AuthMiddleware
	Database Pinger
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(logging.MiddlewareConfig{
		Logger:    deps.Logger,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(deps.Metrics.GinMiddleware())

	r.GET("/healthz", healthHandler(deps.Database))
	r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))

	api := r.Group("/api")

	auth := api.Group("/auth", deps.Auth.OptionalAuth())
	auth.POST("/register", deps.Auth.RegisterHandler)
	auth.POST("/login", deps.Auth.LoginHandler)
	auth.POST("/logout", deps.Auth.LogoutHandler)
	auth.GET("/status", deps.Auth.StatusHandler)

	public := api.Group("", deps.Auth.OptionalAuth())
	authed := api.Group("", deps.Auth.RequireAuth())
	admin := api.Group("", deps.Auth.RequireAuth(), deps.Auth.RequireAdmin())

	handlers.NewPrinterHandler(deps.Services.Printers).RegisterRoutes(public, admin)
	handlers.NewFilamentHandler(deps.Services.Filaments).RegisterRoutes(public, admin)
	handlers.NewJobHandler(deps.Services.Jobs).RegisterRoutes(public, authed, admin)
	handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(admin)
	handlers.NewAuditHandler(deps.Services.Audit).RegisterRoutes(admin)
	handlers.NewSettingsHandler(deps.Settings, deps.Config).RegisterRoutes(admin)

	return r, nil
}

func healthHandler(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if database != nil {
			if err := database.PingContext(ctx); err != nil {
				logging.FromContext(c.Request.Context()).Error("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
