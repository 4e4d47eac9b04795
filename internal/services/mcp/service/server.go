package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/fableforge/fableforge/internal/services/mcp/domain"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "FableForge MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over an HTTP endpoint.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address for the HTTP transport. Defaults to
	// localhost:8081 so the server is not exposed beyond the host.
	HTTPAddr string
}

// Server hosts the MCP server over a game service.
type Server struct {
	mcpServer *mcp.Server
	log       zerolog.Logger
}

// New creates a configured MCP server exposing the game service's tools and
// resources.
func New(svc domain.GameService, log zerolog.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("game service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registrar := mcpServerRegistrationAdapter{server: mcpServer}
	if err := registerGameTools(registrar, svc); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	registerGameResources(registrar, svc)

	return &Server{mcpServer: mcpServer, log: log}, nil
}

// Run creates and serves an MCP server until the context ends.
func Run(ctx context.Context, svc domain.GameService, cfg Config, log zerolog.Logger) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(svc, log)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = "localhost:8081"
		}
		transport := NewHTTPTransport(addr, server.mcpServer, log)
		return transport.Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.log.Info().Str("transport", "stdio").Msg("serving MCP")
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
