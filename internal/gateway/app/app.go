package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/http"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store/drivers/postgres"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store/drivers/redis"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store/drivers/sqlite"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/upstream"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/cryptox"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	fast     store.Ephemeral // nil unless FAST_STORE=redis
	pepper   []byte
	verifier jwtx.Verifier
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	tasks    *service.TaskGroup

	// Services
	gateway             *service.Gateway
	credentialService   *service.CredentialService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "search-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		tasks: &service.TaskGroup{},
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.pepper = pepper

	verifier, err := jwtx.NewCommonHS256([]byte(cfg.AdminJWTSecret), cfg.AdminJWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin token verifier: %w", err)
	}
	app.verifier = verifier

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initFastStore(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Start launches the background workers without serving HTTP. Shutdown
// must only be called after Start.
func (app *Application) Start() {
	app.housekeepingService.Start()
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.Start()

	app.logger.Info("search gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database_driver", app.cfg.DatabaseDriver,
		"fast_store", app.cfg.FastStore,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, drains in-flight requests and
// background tasks (refreshes, usage touches), then closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down search gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	drained := make(chan struct{})
	go func() {
		app.tasks.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		app.logger.Warn("background tasks still running at shutdown")
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("search gateway stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.fast != nil {
		if err := app.fast.Close(); err != nil {
			app.logger.Error("error closing fast store", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the durable store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initFastStore connects the optional volatile store.
func (app *Application) initFastStore(ctx context.Context) error {
	if app.cfg.FastStore != FastStoreRedis {
		return nil
	}

	fast, err := redis.NewStore(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.fast = fast

	app.logger.Info("fast store connected", "kind", FastStoreRedis)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewMetrics(app.registry)
}

// ephemeral is where counters, idempotency records and cached results live.
func (app *Application) ephemeral() store.Ephemeral {
	if app.fast != nil {
		return app.fast
	}
	return app.db
}

// initServices initializes the pipeline and the admin services.
func (app *Application) initServices() error {
	policy, err := service.LoadCachePolicy(app.cfg.CachePolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load cache policy: %w", err)
	}

	eph := app.ephemeral()

	app.gateway = &service.Gateway{
		Auth: &service.Authenticator{
			Credentials: app.db.Credentials(),
			Pepper:      app.pepper,
		},
		Limiter: &service.RateLimiter{
			Counters: eph.Counters(),
			FailOpen: app.cfg.RateLimitFailOpen,
			Metrics:  app.metrics,
		},
		Idempotency: &service.IdempotencyGuard{
			Records:  eph.IdempotencyRecords(),
			TTL:      app.cfg.IdempotencyTTL,
			FailOpen: app.cfg.IdempotencyFailOpen,
			Metrics:  app.metrics,
		},
		Cache: &service.FreshnessCache{
			Entries:  eph.CacheEntries(),
			Policy:   policy,
			FailOpen: app.cfg.CacheFailOpen,
			Tasks:    app.tasks,
			Metrics:  app.metrics,
		},
		Executor:       upstream.NewHTTPExecutor(app.cfg.UpstreamURL, app.cfg.UpstreamToken, app.cfg.UpstreamTimeout),
		Tasks:          app.tasks,
		Metrics:        app.metrics,
		ExecuteTimeout: app.cfg.UpstreamTimeout,
	}

	app.credentialService = &service.CredentialService{
		Store:  app.db,
		Pepper: app.pepper,
	}

	app.housekeepingService = service.NewHousekeepingService(
		eph,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.FastStore = app.fast
	router.Metrics = app.metrics
	router.Gatherer = app.registry
	router.Gateway = app.gateway
	router.CredentialService = app.credentialService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
