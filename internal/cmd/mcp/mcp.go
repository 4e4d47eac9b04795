// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"time"

	"github.com/fableforge/fableforge/internal/platform/config"
	"github.com/fableforge/fableforge/internal/platform/logging"
	"github.com/fableforge/fableforge/internal/platform/otel"
	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
	"github.com/fableforge/fableforge/internal/services/game/storage/sqlite"
	mcpservice "github.com/fableforge/fableforge/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath    string `env:"FABLEFORGE_DB_PATH"       envDefault:"fableforge.db"`
	HTTPAddr  string `env:"FABLEFORGE_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"FABLEFORGE_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server over the game service.
func Run(ctx context.Context, cfg Config) error {
	log := logging.New("mcp")

	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("otel shutdown")
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	svc := gameservice.NewService(store, log)

	return mcpservice.Run(ctx, svc, mcpservice.Config{
		Transport: mcpservice.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
	}, log)
}
