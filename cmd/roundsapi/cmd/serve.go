package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solatis/roundsapi/internal/core/api"
	"github.com/solatis/roundsapi/internal/core/auth"
	"github.com/solatis/roundsapi/internal/core/config"
	"github.com/solatis/roundsapi/internal/core/db"
	"github.com/solatis/roundsapi/internal/core/server"
	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/metrics"
	"github.com/solatis/roundsapi/internal/rounds"
)

const Version = "0.1.0"

// shutdownTimeout bounds draining on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().Int("health-port", 50051, "gRPC health port (0 disables)")
	serveCmd.Flags().String("time-zone", "America/New_York", "IANA zone of the store's date literals")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	secret, err := config.JWTSecret()
	if err != nil {
		return fmt.Errorf("failed to load JWT secret: %w", err)
	}
	if secret == nil {
		logging.Warn().Msgf("%s not set; all callers are anonymous", config.JWTSecretEnv)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	m := metrics.New()
	queries, err := db.LoadQueries(database, db.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	service := rounds.New(queries, rounds.Options{
		Location:        cfg.Location,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	handler, err := api.NewHandler(service)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}
	router := api.NewRouter(handler, api.RouterOptions{
		Auth:           auth.NewAuthenticator(secret),
		Metrics:        m,
		RequestTimeout: cfg.RequestTimeout,
	})

	httpServer, err := server.NewHTTPServer(cfg.Addr(), router, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	var healthServer *server.HealthServer
	if cfg.HealthPort > 0 {
		healthServer = server.NewHealthServer(cfg.Host, cfg.HealthPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server.Probe(gctx, service, cfg.HealthProbeInterval, healthServer, m)
		return nil
	})
	g.Go(httpServer.Start)
	if healthServer != nil {
		g.Go(func() error { return healthServer.Start(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if healthServer != nil {
			if err := healthServer.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("health server shutdown")
			}
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	logging.Info().
		Str("version", Version).
		Str("addr", cfg.Addr()).
		Int("health_port", cfg.HealthPort).
		Str("time_zone", cfg.TimeZone).
		Msg("starting roundsapi")
	return g.Wait()
}
