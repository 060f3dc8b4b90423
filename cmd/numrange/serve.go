package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/application/service"
	"github.com/helixml/numrange/infrastructure/api"
	apimiddleware "github.com/helixml/numrange/infrastructure/api/middleware"
	"github.com/helixml/numrange/internal/config"
	"github.com/helixml/numrange/internal/log"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile      string
		host         string
		port         int
		maxRangeSize int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 7378)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  MAX_RANGE_SIZE               Largest range that may be generated (default: 1000)
  SYSTEM_PROMPT                Agent system prompt
  AGENT_MAX_TOOL_ROUNDS        Tool-call rounds per chat request (default: 4)
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins (default: *)
  METRICS_ENABLED              Serve Prometheus metrics on /metrics (default: true)
  SELF_CHECK                   Generate sample ranges at startup (default: false)
  OPENSERV_API_KEY             Agent platform API key

  LLM_ENDPOINT_*               OpenAI-compatible chat endpoint for /api/v1/chat
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier (default: gpt-4o-mini)
    API_KEY                    API key (falls back to OPENAI_API_KEY)
    TIMEOUT                    Request timeout (default: 60s)
    MAX_RETRIES                Retry attempts (default: 5)
    INITIAL_DELAY              First retry delay (default: 2s)
    BACKOFF_FACTOR             Retry delay multiplier (default: 2.0)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port, maxRangeSize)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 7378)")
	cmd.Flags().IntVar(&maxRangeSize, "max-range-size", 0, "Largest range that may be generated (default: 1000)")

	return cmd
}

func runServe(envFile, host string, port, maxRangeSize int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars
	cfg = applyServeOverrides(cfg, host, port, maxRangeSize)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.Configure(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting numrange", attrs...)

	if cfg.OpenServAPIKey() == "" {
		slogger.Warn("OPENSERV_API_KEY is not set, the agent platform cannot authenticate this agent")
	}

	client, err := numrange.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create numrange client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close numrange client", slog.Any("error", err))
		}
	}()

	if cfg.SelfCheck() {
		service.RunSelfCheck(context.Background(), client.Ranges, slogger)
	}

	apiServer := api.NewAPIServer(client, version, cfg.CORSAllowedOrigins())
	router := apiServer.Router()

	// Middleware MUST be added before MountRoutes
	router.Use(apimiddleware.Logging(slogger, client.HTTPMetrics()))
	router.Use(apimiddleware.CorrelationID)

	apiServer.MountRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.ListenAndServe(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slogger.Info("server stopped")
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port, maxRangeSize int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	if maxRangeSize != 0 {
		opts = append(opts, config.WithMaxRangeSize(maxRangeSize))
	}

	return cfg.Apply(opts...)
}
