package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"

	"fieldreports/internal/config"
	apierrors "fieldreports/internal/errors"
	"fieldreports/internal/infrastructure"
	customMiddleware "fieldreports/internal/middleware"
	"fieldreports/internal/queue"
	"fieldreports/internal/services"
	"fieldreports/internal/storage"
	handlers "fieldreports/internal/transport/http"
	"fieldreports/internal/validation"
)

var (
	// Version is overridden at build time with -ldflags "-X fieldreports/internal/app.Version=..."
	Version = config.AppVersion
	// BuildTime is set at build time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Store         *storage.Store
	Services      *ServiceContainer
	Consumer      *queue.Consumer
	OTelProviders *infrastructure.OTelProviders

	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.BusinessMetrics

	consumerCancel context.CancelFunc
	consumerDone   sync.WaitGroup
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reports *services.ReportService
	Health  *services.HealthService
}

// NewApplication loads configuration and the global logger, then builds the application
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New wires every component from an already loaded configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.String("storage_driver", cfg.Storage.Driver))

	if err := ensureDirectories(cfg.Paths, logger); err != nil {
		return nil, err
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	meter := otelProviders.Meter
	if meter == nil {
		meter = otel.Meter(infrastructure.MeterName)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		OTelProviders: otelProviders,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
		metrics:       metrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// ensureDirectories creates the working directories and checks they are writable
func ensureDirectories(paths config.PathsConfig, logger *slog.Logger) error {
	files := validation.NewFileValidator(logger, 0)
	for _, dir := range []string{paths.UploadsDir, paths.ExportDir} {
		if dir == "" {
			continue
		}
		if err := files.ValidateOutputDirectory(dir); err != nil {
			return fmt.Errorf("failed to prepare directory: %w", err)
		}
	}
	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	reports := services.NewReportService(a.Store, a.Config.Parser, a.metrics, a.Logger)

	var queuePinger services.Pinger
	if a.Config.Queue.Enabled {
		a.Consumer = queue.NewConsumer(a.Config.Queue, a.Config.Paths.UploadsDir, a.Config.Parser.MaxUploadBytes, reports, a.Logger)
		queuePinger = a.Consumer
	}

	health := services.NewHealthService(Version, BuildTime, a.Store, queuePinger, a.Logger)

	a.Services = &ServiceContainer{
		Reports: reports,
		Health:  health,
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recoverer → the rest
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			MaxAge:         300,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Services.Reports, a.Config.Parser.MaxUploadBytes, a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)

		// Probes stay outside the request timeout
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.Mount("/reports", reportHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start starts the HTTP server and, when enabled, the queue consumer.
// cancel is called if the server stops on its own.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level),
		slog.Bool("queue_enabled", a.Consumer != nil))

	if a.Consumer != nil {
		consumerCtx, consumerCancel := context.WithCancel(ctx)
		a.consumerCancel = consumerCancel
		a.consumerDone.Add(1)
		go func() {
			defer a.consumerDone.Done()
			if err := a.Consumer.Run(consumerCtx); err != nil {
				a.Logger.ErrorContext(ctx, "Queue consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.consumerCancel != nil {
		a.consumerCancel()
		a.consumerDone.Wait()
	}

	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// the signal context is done; shutdown gets a fresh one
	return a.Stop(context.Background())
}
