// Package http wires the gin engine: middleware chain, API routes, and
// the operational endpoints (health, metrics, pprof).
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/api/http/handler"
	"github.com/regtrace/regtrace/internal/api/http/middleware"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/internal/observability/metrics"
	"github.com/regtrace/regtrace/pkg/config"
)

// Handlers groups the endpoint handlers the router mounts
type Handlers struct {
	Framework *handler.FrameworkHandler
	Crosswalk *handler.CrosswalkHandler
	Drift     *handler.DriftHandler
	Gap       *handler.GapHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// NewRouter builds the gin engine with the full middleware chain and
// every API route mounted
func NewRouter(cfg *config.Config, handlers Handlers, collector *metrics.Collector, logger logging.Logger) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewLoggingMiddleware(logger).Handler())
	engine.Use(middleware.NewMetricsMiddleware(collector).Handler())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.Server.CORSAllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		engine.Use(cors.New(corsCfg))
	}

	rateLimit := middleware.NewRateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	auth := middleware.NewAuthMiddleware(cfg.Server.JWTSecret,
		[]string{"/healthz", "/readyz", "/metrics"}, logger)

	// Operational endpoints sit outside auth and rate limiting
	engine.GET("/healthz", handlers.Health.Live)
	engine.GET("/readyz", handlers.Health.Ready)
	engine.GET("/metrics", gin.WrapH(collector.Handler()))
	if cfg.Server.EnablePprof {
		pprof.Register(engine)
	}

	api := engine.Group("/api/v1")
	api.Use(rateLimit.Handler())
	api.Use(auth.Handler())
	{
		api.POST("/catalogs", handlers.Framework.LoadCatalog)
		api.GET("/frameworks", handlers.Framework.ListFrameworks)
		api.GET("/frameworks/:id/versions", handlers.Framework.ListVersions)
		api.GET("/versions/:id", handlers.Framework.GetVersion)
		api.POST("/versions/:id/activate", handlers.Framework.ActivateVersion)
		api.POST("/versions/:id/gaps/recalculate", handlers.Framework.RecalculateGaps)
		api.GET("/versions/:id/mappings", handlers.Crosswalk.ListByVersion)

		api.GET("/requirements", handlers.Framework.SearchRequirements)
		api.GET("/requirements/:id/mappings", handlers.Crosswalk.ListByRequirement)
		api.GET("/requirements/compare/:code", handlers.Dashboard.Compare)

		api.POST("/mappings", handlers.Crosswalk.CreateMapping)
		api.GET("/mappings/:id", handlers.Crosswalk.GetMapping)
		api.DELETE("/mappings/:id", handlers.Crosswalk.DeleteMapping)

		api.GET("/drift", handlers.Drift.ListOpen)
		api.GET("/drift/:id", handlers.Drift.Get)
		api.POST("/drift/:id/acknowledge", handlers.Drift.Acknowledge)
		api.POST("/drift/:id/resolve", handlers.Drift.Resolve)

		api.GET("/gaps", handlers.Gap.List)
		api.GET("/gaps/:id", handlers.Gap.Get)
		api.PATCH("/gaps/:id/status", handlers.Gap.UpdateStatus)
		api.POST("/gaps/:id/evidence", handlers.Gap.AttachEvidence)
		api.GET("/gaps/:id/evidence/url", handlers.Gap.EvidenceURL)

		api.GET("/dashboard", handlers.Dashboard.Dashboard)
	}

	return engine
}
