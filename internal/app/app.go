package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"sprintdash/internal/config"
	"sprintdash/internal/dataset"
	apierrors "sprintdash/internal/errors"
	"sprintdash/internal/infrastructure"
	customMiddleware "sprintdash/internal/middleware"
	"sprintdash/internal/services"
	handlers "sprintdash/internal/transport/http"
	"sprintdash/internal/views"
	ws "sprintdash/internal/websocket"
	"sprintdash/pkg/contracts"
	"sprintdash/pkg/contracts/events"
)

// CodeServerShutdown is broadcast to WebSocket viewers before the server stops.
const CodeServerShutdown = "SERVER_SHUTDOWN"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Dataset       *dataset.Dataset
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics

	// OpenBrowser opens the dashboard in the default browser once the
	// server answers its health check.
	OpenBrowser bool

	errorHandler *apierrors.ErrorHandler
	wsHandler    *ws.Handler
	serverErr    chan error
	url          string
}

// NewApplication loads the dataset and wires every component. A nil cfg is
// loaded from the environment and config file.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}
	if cfg.Server.Debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApplication(ctx, cfg, logger)
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Server.Debug),
		serverErr:     make(chan error, 1),
	}

	if err := app.initializeServices(ctx, paths); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and builds the services on top of it.
func (a *Application) initializeServices(ctx context.Context, paths *config.Paths) error {
	metrics, err := infrastructure.CreateMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	a.Metrics = metrics

	data, err := dataset.Open(ctx, a.Config.Data, paths, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.Dataset = data

	engine := views.NewEngine(views.OptionsFromConfig(a.Config.Dashboard))
	a.Dashboard = services.NewDashboardService(data, engine, metrics, a.Logger)

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Dashboard.Dispatcher(), a.Config.WebSocket, wsMetrics, a.Logger)
	a.wsHandler = ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.allowedOrigins(), a.isDevelopmentMode(), a.Logger)

	a.HealthService = services.NewHealthService(a.Dashboard, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// The WebSocket route sits before the full stack: timeout and the
	// logging response writer must not wrap a hijacked connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", a.wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders(a.isDevelopmentMode()).Handler)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.errorHandler,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Get("/", handlers.ServeDashboard(a.Logger))
		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/metrics", handlers.NewMetricsHandler(a.HealthService).Routes())
		r.Mount("/dashboard", handlers.NewDashboardHandler(a.Dashboard, a.Logger, a.errorHandler).Routes())
		r.Post("/client-log", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)
	})
}

// allowedOrigins returns the configured origins plus the listen address.
func (a *Application) allowedOrigins() []string {
	origins := append([]string{}, a.Config.Security.AllowedOrigins...)
	port := a.Config.Server.Port
	return append(origins,
		fmt.Sprintf("http://localhost:%d", port),
		fmt.Sprintf("http://127.0.0.1:%d", port),
	)
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	config := customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
	}
	a.Logger.Debug("CORS configured", slog.Any("allowed_origins", config.AllowedOrigins))
	return config
}

// isDevelopmentMode reports whether debug serving is on.
func (a *Application) isDevelopmentMode() bool {
	return a.Config.Server.Debug
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
	}
}

// Start starts the hub and the HTTP server. It returns once the listener is
// bound; serve errors are reported by Run.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level),
		slog.Bool("debug", a.Config.Server.Debug))

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serverErr <- err
		}
	}()

	a.performStartupHealthCheck(ctx)

	a.url = "http://" + ln.Addr().String()
	a.Logger.InfoContext(ctx, "Application started successfully", slog.String("url", a.url))

	if a.OpenBrowser {
		go a.openWhenReady(ctx, a.url)
	}
	return nil
}

// URL is the base address the server listens on, set by Start.
func (a *Application) URL() string { return a.url }

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	notice := events.NewMessage(events.MessageTypeError, "", events.ErrorData{
		Code:    CodeServerShutdown,
		Message: "The dashboard server is shutting down",
	})
	if err := a.WebSocketHub.Broadcast(notice); err != nil {
		a.Logger.WarnContext(ctx, "Failed to notify WebSocket clients", slog.String("error", err.Error()))
	}

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run runs the application until ctx is done, an interrupt arrives or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case serveErr = <-a.serverErr:
	}

	if err := a.Stop(context.Background()); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

// performStartupHealthCheck logs whether the dashboard has data to show.
// An empty dataset is a warning, never a startup failure.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	ready := a.HealthService.ReadinessCheck(ctx)
	data, _ := ready.Services["data"].(services.ServiceHealth)
	if ready.Status != services.StatusReady {
		a.Logger.WarnContext(ctx, "Startup health check warnings",
			slog.String("status", ready.Status),
			slog.String("data", data.Message))
		return
	}
	a.Logger.InfoContext(ctx, "Startup health check passed", slog.String("data", data.Message))
}

// openWhenReady polls the health endpoint, then opens url in a browser.
func (a *Application) openWhenReady(ctx context.Context, url string) {
	client := &http.Client{Timeout: time.Second}
	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := client.Get(url + "/api/health")
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		if err := openBrowser(ctx, url); err != nil {
			a.Logger.WarnContext(ctx, "Failed to open browser",
				slog.String("error", err.Error()),
				slog.String("url", url))
			fmt.Printf("\n%s is running at %s\n\n", config.AppName, url)
		}
		return
	}
	a.Logger.ErrorContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", url),
		slog.Int("max_retries", maxRetries))
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	name string
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(goos, url string) []browserMethod {
	switch goos {
	case "windows":
		return []browserMethod{
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}

// openBrowser tries each platform method until one starts.
func openBrowser(ctx context.Context, url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(runtime.GOOS, url) {
		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		go cmd.Wait()
		slog.InfoContext(ctx, "Browser opened", slog.String("method", method.name), slog.String("url", url))
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}
