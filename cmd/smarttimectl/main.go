// Command smarttimectl runs one-off operations against the SmartTime
// database: migrations, demo data, reminder dispatch and reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"smart_time/internal/config"
	"smart_time/internal/db"
	"smart_time/internal/http/handlers"
	"smart_time/internal/logger"
	"smart_time/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "smarttimectl",
		Short:         "SmartTime operations tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(eventsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the same environment as the server and sets up logging
// and token signing
func loadConfig() (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	return cfg, nil
}

// env is an open database plus the service set the server uses
type env struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	svc  *handlers.Handler
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &env{
		cfg:  cfg,
		pool: pool,
		svc:  handlers.NewHandler(pool, cfg.BotToken, nil),
	}, nil
}

func (e *env) Close() {
	e.pool.Close()
}
