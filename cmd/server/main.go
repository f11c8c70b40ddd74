package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-scheduler/internal/app"
	"github.com/benvon/smart-scheduler/internal/config"
	"github.com/benvon/smart-scheduler/internal/handlers"
	"github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/middleware"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/services/oidc"
	"github.com/benvon/smart-scheduler/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const (
	serviceName = "smart-scheduler-api"

	// defaultLoginRate applies to the unauthenticated login endpoint per client address
	defaultLoginRate = "20-M"
)

// Set at link time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("version", version),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if !cfg.AuthEnabled() {
		zapLogger.Fatal("oidc_not_configured", zap.String("required", "OIDC_ISSUER, OIDC_JWKS_URL"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(ctx, telemetry.Config{
				ServiceName:    serviceName,
				ServiceVersion: version,
				Endpoint:       cfg.OTELEndpoint,
				Insecure:       cfg.OTELInsecure,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	a, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if a.Redis != nil {
		redisClient = a.Redis.Client()
	}
	apiLimiter, err := newRateLimiter(ctx, redisClient, a, models.RatelimitKeyAPI, middleware.DefaultRatelimitRate, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
	}
	loginLimiter, err := newRateLimiter(ctx, redisClient, a, models.RatelimitKeyLogin, defaultLoginRate, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
	}

	verifier := oidc.NewVerifier(oidc.NewJWKSManager(cfg.OIDCJWKSURL, time.Hour), cfg.OIDCIssuer, cfg.OIDCClientID)
	authMW := middleware.Auth(verifier, a.Users, zapLogger)

	authHandler := handlers.NewAuthHandler(oidc.NewClient(oidc.ClientConfig{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		AuthURL:      cfg.OIDCAuthURL,
		TokenURL:     cfg.OIDCTokenURL,
		RedirectURL:  cfg.OIDCRedirectURL,
	}))
	schedulingHandler := handlers.NewSchedulingHandler(a.Assistant, zapLogger)

	checks := map[string]handlers.Checker{
		"database": a.DB.HealthCheck,
		"queue":    a.Queue.HealthCheck,
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	healthChecker := handlers.NewHealthChecker(checks)

	r := mux.NewRouter()

	// The first registered middleware is the outermost wrapper
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.CORSAllowOrigins, cfg.FrontendURL), zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger))
	r.Use(middleware.ContentType(zapLogger))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler(handlers.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})).Methods("GET")
	r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Login is limited per client address, everything else per user
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	loginRouter := authRouter.PathPrefix("").Subrouter()
	loginRouter.Use(loginLimiter.Middleware())
	authHandler.RegisterRoutes(loginRouter)

	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(apiLimiter.Middleware())
	authHandler.RegisterProtectedRoutes(protectedAuthRouter)

	protected := apiRouter.PathPrefix("").Subrouter()
	protected.Use(authMW)
	protected.Use(apiLimiter.Middleware())
	schedulingHandler.RegisterRoutes(protected)

	// CORS has already answered preflights by the time this runs
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   35 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go apiLimiter.Start(ctx)
	go loginLimiter.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		zapLogger.Error("server_failed", zap.Error(err))
	}

	zapLogger.Info("server_shutting_down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// newRateLimiter builds a hot-reloading limiter for key and loads its current rate
func newRateLimiter(ctx context.Context, client *redis.Client, a *app.App, key, defaultRate string, logger *zap.Logger) (*middleware.RateLimitReloader, error) {
	rl, err := middleware.NewRateLimitReloader(client, a.RatelimitConfigs, key, defaultRate, logger, time.Minute)
	if err != nil {
		return nil, err
	}
	rl.Load(ctx)
	return rl, nil
}
