package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adeelchainz/base-server/internal/config"
	"github.com/adeelchainz/base-server/internal/handler"
	"github.com/adeelchainz/base-server/internal/notify"
	"github.com/adeelchainz/base-server/internal/repository"
	"github.com/adeelchainz/base-server/internal/service"
	"github.com/adeelchainz/base-server/internal/utils"
	"github.com/adeelchainz/base-server/pkg/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
	queue  *notify.Queue
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()

	metrics, err := observability.NewMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	queue := notify.NewQueue(newSender(cfg, logger), logger, metrics, cfg.Email.QueueSize, cfg.Email.Workers)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())

	authService := service.NewAuthService(
		repos,
		jwtManager,
		utils.NewBcryptHasher(cfg.Security.BCryptCost),
		blacklistService,
		queue,
		cfg,
		logger,
		metrics,
	)

	responder := handler.NewResponder(cfg, logger)
	authHandler := handler.NewAuthHandler(authService, responder, handler.NewSessionCookies(cfg), logger)
	healthChecker := NewHealthChecker(infra, responder, cfg.Env)

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.SecurityHeadersMiddleware(cfg.IsProduction()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, logger, authHandler, authService, responder, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
		queue:  queue,
	}, nil
}

func newSender(cfg *config.Config, logger *zap.Logger) notify.Sender {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("EMAIL_SMTP_HOST is not set, emails will only be logged")
		return notify.NewLogSender(logger)
	}
	return notify.NewSMTPSender(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername,
		cfg.Email.SMTPPassword,
		cfg.Email.From,
	)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	responder *handler.Responder,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.NoRoute(responder.NoRoute)

	rateLimit := handler.RateLimitMiddleware(
		rateLimiter,
		responder,
		logger,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)
	authenticated := handler.AuthMiddleware(authService, responder)

	api := router.Group(cfg.Server.APIRoot)
	{
		api.GET("/self", responder.Self)
		api.GET("/health", healthChecker.Handler)

		api.POST("/register", rateLimit, authHandler.Register)
		api.PATCH(handler.ConfirmRegistrationPath, authHandler.ConfirmRegistration)
		api.POST("/login", rateLimit, authHandler.Login)
		api.PUT("/logout", authenticated, authHandler.Logout)
		api.GET("/me", authenticated, authHandler.GetMe)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.queue.Start(ctx)

	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("api_root", a.config.Server.APIRoot),
			zap.String("env", a.config.Env),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// Shutdown stops the server first so no new emails are queued, then drains the
// email queue before closing connections.
func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	serverErr := a.server.Shutdown(ctx)

	if err := a.queue.Shutdown(ctx); err != nil {
		a.infra.Logger().Warn("Email queue did not drain", zap.Error(err))
	}

	err := errors.Join(serverErr, a.infra.Shutdown(ctx))
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
