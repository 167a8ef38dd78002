package main

import (
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/lead-forensics/internal/domains"
	"github.com/richxcame/lead-forensics/internal/leads"
	"github.com/richxcame/lead-forensics/internal/vendorhistory"
	"github.com/richxcame/lead-forensics/pkg/health"
	"github.com/richxcame/lead-forensics/pkg/middleware"
)

// routerDeps is everything the HTTP layer needs. Optional parts are nil
// when their backing service is not configured.
type routerDeps struct {
	serviceName string
	version     string
	jwtSecret   string
	corsOrigins string

	batches  leads.BatchService
	history  vendorhistory.HistoryService
	registry *domains.Registry
	checks   map[string]health.Check
}

func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	if sentry.CurrentHub().Client() != nil {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(deps.serviceName))
	router.Use(cors.New(corsConfig(deps.corsOrigins)))

	router.GET("/healthz", health.Handler(deps.serviceName, deps.version, health.DefaultCheckerConfig(), deps.checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := middleware.RequireRole(middleware.RoleAdmin)
	api := router.Group("/api/v1", middleware.AuthMiddleware(deps.jwtSecret))
	{
		leads.NewHandler(deps.batches).RegisterRoutes(api)

		if deps.history != nil {
			vendorhistory.NewHandler(deps.history).RegisterRoutes(api, admin)
		}
		if deps.registry != nil {
			domains.NewHandler(deps.registry).RegisterRoutes(api.Group("/admin"), admin)
		}
	}

	return router
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	if allowed := splitOrigins(origins); len(allowed) > 0 {
		cfg.AllowOrigins = allowed
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	return cfg
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
