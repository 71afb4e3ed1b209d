package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miniapp-template/dashboard/internal/activity"
	"github.com/miniapp-template/dashboard/internal/app"
	"github.com/miniapp-template/dashboard/internal/auth"
	"github.com/miniapp-template/dashboard/internal/crud"
	"github.com/miniapp-template/dashboard/internal/handlers"
	"github.com/miniapp-template/dashboard/internal/middleware"
	"github.com/miniapp-template/dashboard/internal/services"
)

// Deps bundles the long-lived components the router wires to handlers.
type Deps struct {
	Facade      *crud.Facade
	Proxy       *activity.Proxy
	Tokens      *auth.TokenService
	Access      *auth.AccessChecker
	Preferences *services.PreferencesService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes
// under the configured base path.
func NewRouter(cfg *app.Config, deps Deps) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Facade == nil {
		return nil, fmt.Errorf("crud facade must be provided")
	}
	if deps.Proxy == nil {
		return nil, fmt.Errorf("activity proxy must be provided")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity(!cfg.Server.IsProduction()))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	base := strings.TrimRight(cfg.Server.BasePath, "/")
	api := r.Group(base + "/api")

	api.GET("/health", handlers.Health(cfg.Server.Environment))
	api.GET("/me", handlers.Me)

	entityHandler := handlers.NewEntityHandler(deps.Facade)
	entities := api.Group("/entities")
	{
		entities.GET("", entityHandler.List)
		entities.POST("", entityHandler.Create)
		entities.GET("/export", entityHandler.Export)
		entities.POST("/bulk-delete", entityHandler.BulkDelete)
		entities.POST("/bulk-update", entityHandler.BulkUpdate)
		entities.POST("/import", entityHandler.Import)
		entities.GET("/:id", entityHandler.Get)
		entities.PUT("/:id", entityHandler.Update)
		entities.DELETE("/:id", entityHandler.Delete)
	}

	authHandler := handlers.NewAuthHandler(deps.Tokens, deps.Access, cfg.Auth.AppName)
	authRoutes := api.Group("/auth")
	{
		authRoutes.GET("/token", authHandler.Token)
		authRoutes.POST("/verify", authHandler.Verify)
		authRoutes.GET("/userinfo", authHandler.UserInfo)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	prefsHandler := handlers.NewPreferencesHandler(deps.Preferences)
	api.GET("/user-preferences", prefsHandler.Get)
	api.PUT("/user-preferences", prefsHandler.Update)

	activityHandler := handlers.NewActivityHandler(deps.Proxy)
	api.GET("/user-activities", activityHandler.List)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
