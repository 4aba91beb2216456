package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/auth"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/config"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/event"
	handler "github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/handler/http"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/persistence"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/reconciler"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/service"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/health"
	pkgkafka "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/kafka"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/tracing"
)

const purgeInterval = time.Hour

// App wires together all dependencies and runs the storefront cart service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	storage        *Storage
	producer       *pkgkafka.Producer
	background     *reconciler.Background
	tracerShutdown func(context.Context) error
	httpServer     *http.Server

	stopPurge chan struct{}
	purgeWG   sync.WaitGroup
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingCfg := tracing.DefaultConfig(cfg.ServiceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	storage, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher = event.NopPublisher{}
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	adapter := persistence.NewAdapter(storage.Ledgers, logger)
	events := event.NewProducer(publisher, logger)

	policy := domain.DefaultPricingPolicy()
	policy.CouponEstimateRate = cfg.CouponEstimateRate()
	cartService := service.NewCartService(adapter, events, policy, logger)

	commerceClient := NewCommerceClient(cfg, logger)
	rec := reconciler.New(cartService, commerceClient, events, cfg.ReconcileItemTimeout, logger)
	background := reconciler.NewBackground(rec, logger)
	authService := auth.NewService(commerceClient, background, cfg.JWTSecret, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("ledger_store", adapter.Ping)
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(
		handler.NewCartHandler(cartService, logger),
		handler.NewSessionHandler(authService, rec, logger),
		healthHandler,
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		storage:        storage,
		producer:       producer,
		background:     background,
		tracerShutdown: tracerShutdown,
		httpServer:     httpServer,
		stopPurge:      make(chan struct{}),
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.Store),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	a.purgeWG.Add(1)
	go a.purgeLoop()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

func (a *App) purgeLoop() {
	defer a.purgeWG.Done()
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopPurge:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := a.storage.PurgeExpired(ctx, a.cfg.CartTTLDuration())
			cancel()
			if err != nil {
				a.logger.Error("purge expired ledgers failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				a.logger.Info("purged expired ledgers", slog.Int64("count", n))
			}
		}
	}
}

// Shutdown gracefully stops all components. In-flight reconciliations are
// allowed to finish before the store is closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	close(a.stopPurge)
	a.purgeWG.Wait()
	a.background.Wait()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Error("ledger store close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
