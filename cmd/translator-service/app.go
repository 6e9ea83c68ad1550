package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"babelfeed/internal/cache"
	"babelfeed/internal/config"
	"babelfeed/internal/constants"
	"babelfeed/internal/engine"
	"babelfeed/internal/feed"
	"babelfeed/internal/filter"
	"babelfeed/internal/history"
	"babelfeed/internal/i18n"
	"babelfeed/internal/logger"
	"babelfeed/internal/pipeline"
	"babelfeed/internal/sink"
	"babelfeed/pkg/health"
	"babelfeed/pkg/metrics"
	"babelfeed/pkg/retry"
	"babelfeed/pkg/tracing"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	pipeline       *pipeline.Pipeline
	sink           sink.Sink
	historyStore   *history.Store
	redisClient    *redis.Client
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetComponent("translator-service")
	}
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initPipeline(ctx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, "translator-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterPipelineMetrics()
	metrics.RegisterEngineMetrics()
	metrics.RegisterCacheMetrics()
	metrics.RegisterTransportMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initPipeline(ctx context.Context) error {
	source, err := feed.New(a.Config.Feed, a.Logger)
	if err != nil {
		return err
	}

	flt := filter.New(a.Config.Translation.TargetLanguage, a.Config.Translation.SkipRules, a.Logger)

	store, redisClient, err := cache.New(a.Config.Cache, a.Logger)
	if err != nil {
		return err
	}
	a.redisClient = redisClient

	eng, err := engine.New(a.Config)
	if err != nil {
		return err
	}

	translator := i18n.NewTranslator(a.Config.Sink.Locale)
	primary, err := sink.New(a.Config.Sink, translator, a.Logger)
	if err != nil {
		return err
	}
	a.sink = primary

	if a.Config.History.Enabled {
		historyStore, err := history.Open(ctx, a.Config.History.Postgres, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		a.historyStore = historyStore
		a.sink = sink.NewMulti(primary, sink.NewHistory(historyStore, a.Logger))
	}

	a.pipeline = pipeline.New(pipeline.Config{
		Workers:    a.Config.Translation.MaxWorkers,
		TargetLang: a.Config.Translation.TargetLanguage,
		Timeout:    a.Config.Translation.RequestTimeout(),
		Retry: retry.Policy{
			MaxAttempts:     a.Config.Translation.Retry.MaxAttempts,
			InitialInterval: a.Config.Translation.Retry.InitialInterval,
			MaxInterval:     a.Config.Translation.Retry.MaxInterval,
			Multiplier:      a.Config.Translation.Retry.Multiplier,
		},
	}, source, flt, store, eng, a.sink, a.Logger)

	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.historyStore != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.historyStore.DB()))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","state":"%s","timestamp":"%s"}`,
			h.Status, a.pipeline.State(), h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g := new(errgroup.Group)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	pipelineErr := a.pipeline.Run(ctx)

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Errorw("HTTP server shutdown error", "error", err)
		}
	}

	if serverErr := g.Wait(); serverErr != nil && pipelineErr == nil {
		pipelineErr = serverErr
	}
	return pipelineErr
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application...")

	var errs []error

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink close error: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.Logger.Info("Application exited successfully")
	return nil
}
