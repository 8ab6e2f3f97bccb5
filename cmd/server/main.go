// regtrace API server: wires storage, cache, messaging and the
// crosswalk engine behind the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/regtrace/regtrace/internal/api/http"
	"github.com/regtrace/regtrace/internal/api/http/handler"
	appservice "github.com/regtrace/regtrace/internal/app/service"
	"github.com/regtrace/regtrace/internal/domain/compare"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/infrastructure/message"
	"github.com/regtrace/regtrace/internal/infrastructure/message/kafka"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/postgres"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/redis"
	"github.com/regtrace/regtrace/internal/infrastructure/storage/minio"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/internal/observability/metrics"
	"github.com/regtrace/regtrace/internal/observability/trace"
	"github.com/regtrace/regtrace/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "regtrace-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	loader, err := config.NewLoader(config.LoaderOptions{
		ConfigFile:  configFile,
		EnableWatch: true,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Get()

	logger, err := logging.NewZapLogger(logging.Config{
		Level:      cfg.Observability.Logging.Level,
		Format:     cfg.Observability.Logging.Format,
		File:       cfg.Observability.Logging.File,
		MaxSizeMB:  cfg.Observability.Logging.MaxSizeMB,
		MaxBackups: cfg.Observability.Logging.MaxBackups,
		MaxAgeDays: cfg.Observability.Logging.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	tracer := trace.NewNoop()
	if cfg.Observability.Tracing.Enabled {
		otelTracer, err := trace.NewOtelTracer(ctx, trace.Config{
			ServiceName: "regtrace-server",
			Endpoint:    cfg.Observability.Tracing.Endpoint,
			SampleRatio: cfg.Observability.Tracing.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("create tracer: %w", err)
		}
		tracer = otelTracer
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", logging.Error(err))
			}
		}()
	}

	collector := metrics.NewCollector(metrics.CollectorConfig{
		Namespace:            cfg.Observability.Metrics.Namespace,
		EnableRuntimeMetrics: true,
	})

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("connected to postgres",
		logging.String("host", cfg.Database.Host),
		logging.String("database", cfg.Database.Database))

	versionRepo, err := postgres.NewFrameworkRepository(db)
	if err != nil {
		return fmt.Errorf("framework repository: %w", err)
	}
	requirementRepo, err := postgres.NewRequirementRepository(db)
	if err != nil {
		return fmt.Errorf("requirement repository: %w", err)
	}
	mappingRepo, err := postgres.NewCrosswalkRepository(db)
	if err != nil {
		return fmt.Errorf("crosswalk repository: %w", err)
	}
	controlRepo, err := postgres.NewControlRepository(db)
	if err != nil {
		return fmt.Errorf("control repository: %w", err)
	}
	answerLookup, err := postgres.NewAnswerLookup(db)
	if err != nil {
		return fmt.Errorf("answer lookup: %w", err)
	}
	gapRepo, err := postgres.NewGapRepository(db)
	if err != nil {
		return fmt.Errorf("gap repository: %w", err)
	}
	driftRepo, err := postgres.NewDriftRepository(db)
	if err != nil {
		return fmt.Errorf("drift repository: %w", err)
	}

	var cache redis.SnapshotCache = redis.NopCache{}
	if cfg.Redis.Addr != "" {
		cache, err = redis.NewSnapshotCache(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, serving without snapshot cache", logging.Error(err))
			cache = redis.NopCache{}
		}
	}

	var publisher message.Publisher
	publisher, err = kafka.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("kafka publisher: %w", err)
	}
	defer publisher.Close()

	evidenceStore, err := minio.NewEvidenceStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("evidence store: %w", err)
	}

	versionService := framework.NewService(versionRepo, logger)
	library := requirement.NewLibrary(requirementRepo)
	catalogLoader := requirement.NewLoader(versionRepo, requirementRepo)
	crosswalkService := crosswalk.NewService(mappingRepo, library, logger)
	matcher := crosswalk.NewMatcher(crosswalk.MatcherConfig{
		OverlapThreshold: cfg.Engine.AutoMapOverlapThreshold,
		TopK:             cfg.Engine.AutoMapTopK,
	})
	driftEngine := drift.NewEngine(driftRepo, mappingRepo, library, versionRepo, matcher,
		drift.EngineConfig{TransitionGraceDays: cfg.Engine.TransitionGraceDays}, logger)
	gapDetector := gap.NewDetector(gapRepo, gap.DetectorConfig{
		CoverageThreshold:    cfg.Engine.GapCoverageThreshold,
		HighSeverityCoverage: cfg.Engine.GapHighSeverityCoverage,
	}, logger)
	comparator := compare.NewComparator(library, mappingRepo, answerLookup)

	complianceService := appservice.NewComplianceService(versionService, requirementRepo,
		mappingRepo, controlRepo, answerLookup, driftEngine, gapDetector,
		cache, publisher, collector, logger)
	dashboardService := appservice.NewDashboardService(versionRepo, versionService,
		mappingRepo, controlRepo, answerLookup, driftEngine, gapRepo,
		comparator, cache, logger)
	gapService := appservice.NewGapService(gapRepo, evidenceStore, cache, publisher, logger)
	mappingService := appservice.NewMappingService(crosswalkService, complianceService, cache, logger)

	handlers := httpapi.Handlers{
		Framework: handler.NewFrameworkHandler(versionService, versionRepo, library,
			catalogLoader, complianceService, logger),
		Crosswalk: handler.NewCrosswalkHandler(mappingService, logger),
		Drift:     handler.NewDriftHandler(complianceService, logger),
		Gap:       handler.NewGapHandler(gapService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"postgres": pingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": cache,
		}),
	}

	router := httpapi.NewRouter(cfg, handlers, collector, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			logging.String("addr", srv.Addr),
			logging.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// pingFunc adapts a function to the health checker interface
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
