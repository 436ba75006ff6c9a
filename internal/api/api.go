// Package api exposes the assistant over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethanbaker/api/pkg/api_key"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/legal-assistant/internal/api/middleware"
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/ethanbaker/legal-assistant/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	chat_module "github.com/ethanbaker/legal-assistant/internal/api/modules/chat"
	conversations_module "github.com/ethanbaker/legal-assistant/internal/api/modules/conversations"
	health_module "github.com/ethanbaker/legal-assistant/internal/api/modules/health"
	memory_module "github.com/ethanbaker/legal-assistant/internal/api/modules/memory"
)

const shutdownTimeout = 10 * time.Second

// Services are the backends the route modules call into
type Services struct {
	Chat          chat_module.Service
	Conversations conversations_module.Store
	Memory        memory.Store
}

// NewEngine builds the gin engine with middleware and every module registered
func NewEngine(cfg *utils.Config, log zerolog.Logger, services Services) (*gin.Engine, error) {
	validator, err := makeApiKeyValidator(cfg)
	if err != nil {
		return nil, err
	}

	// Add app level settings/routes
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(cfg.GetWithDefault("SERVICE_NAME", "legal-assistant")),
		middleware.Logging(log.With().Str("component", "api").Logger()),
		middleware.Metrics(),
	)
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", sdk.APIKeyHeader, sdk.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")
	health_module.RegisterRoutes(baseGroup)

	// Everything else needs the service key and a caller identity
	protected := baseGroup.Group("")
	protected.Use(api_key.APIKeyHeaderHandler(validator), middleware.RequireUser())

	chat_module.RegisterRoutes(protected, services.Chat)
	conversations_module.RegisterRoutes(protected, services.Conversations)
	memory_module.RegisterRoutes(protected, services.Memory)

	return engine, nil
}

// Start serves handler on API_PORT until ctx is cancelled, then drains in-flight requests
func Start(ctx context.Context, cfg *utils.Config, log zerolog.Logger, handler http.Handler) error {
	port := cfg.GetWithDefault("API_PORT", "8080")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// makeApiKeyValidator checks if the provided API key is valid
func makeApiKeyValidator(cfg *utils.Config) (func(key string) bool, error) {
	// Get api key from config
	apiKey := cfg.Get("API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("API_KEY not set in environment")
	}

	return func(key string) bool {
		return apiKey == key
	}, nil
}
