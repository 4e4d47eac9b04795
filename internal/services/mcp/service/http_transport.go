package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// HTTPTransport implements mcp.Transport for HTTP-based MCP communication.
// It serves JSON-RPC messages over POST requests and supports Server-Sent
// Events for streaming responses.
type HTTPTransport struct {
	addr         string
	server       *mcp.Server
	log          zerolog.Logger
	sessions     map[string]*httpSession
	sessionsMu   sync.RWMutex
	httpServer   *http.Server
	serverCtx    context.Context
	serverCancel context.CancelFunc
	serverOnceMu sync.Mutex
	serverOnce   map[string]*sync.Once
}

// httpSession maintains state for an HTTP client connection.
type httpSession struct {
	id        string
	conn      *httpConnection
	createdAt time.Time
	lastUsed  time.Time
}

// httpConnection implements mcp.Connection for HTTP-based communication.
type httpConnection struct {
	sessionID  string
	reqChan    chan jsonrpc.Message
	respChan   chan jsonrpc.Message
	closed     chan struct{}
	mu         sync.Mutex
	closedFlag bool
}

// NewHTTPTransport creates an HTTP transport serving the given MCP server.
func NewHTTPTransport(addr string, server *mcp.Server, log zerolog.Logger) *HTTPTransport {
	if addr == "" {
		addr = "localhost:8081"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		addr:         addr,
		server:       server,
		log:          log,
		sessions:     make(map[string]*httpSession),
		serverCtx:    ctx,
		serverCancel: cancel,
		serverOnce:   make(map[string]*sync.Once),
	}
}

// Connect implements mcp.Transport. It creates a new session whose connection
// feeds messages between HTTP handlers and the MCP server.
func (t *HTTPTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	sessionID := generateSessionID()

	conn := &httpConnection{
		sessionID: sessionID,
		reqChan:   make(chan jsonrpc.Message, 10),
		respChan:  make(chan jsonrpc.Message, 10),
		closed:    make(chan struct{}),
	}

	session := &httpSession{
		id:        sessionID,
		conn:      conn,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
	}

	t.sessionsMu.Lock()
	t.sessions[sessionID] = session
	t.sessionsMu.Unlock()

	return conn, nil
}

// Start starts the HTTP server and blocks until the context ends or the
// server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.serverCtx, t.serverCancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/messages", t.handleMessages)
	mux.HandleFunc("/mcp/sse", t.handleSSE)
	mux.HandleFunc("/mcp/health", t.handleHealth)

	t.httpServer = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	t.log.Info().Str("addr", t.addr).Msg("starting MCP HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.log.Info().Msg("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		if t.serverCancel != nil {
			t.serverCancel()
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

// handleMessages handles POST /mcp/messages for JSON-RPC requests.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.Header.Get("X-MCP-Session-ID")
	var session *httpSession
	var exists bool

	if sessionID != "" {
		t.sessionsMu.RLock()
		session, exists = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
	}

	if !exists || session == nil {
		conn, err := t.Connect(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to create session: %v", err), http.StatusInternalServerError)
			return
		}
		sessionID = conn.SessionID()
		t.sessionsMu.RLock()
		session = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
		w.Header().Set("X-MCP-Session-ID", sessionID)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read request: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var msg jsonrpc.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON-RPC message: %v", err), http.StatusBadRequest)
		return
	}

	t.sessionsMu.Lock()
	session.lastUsed = time.Now()
	t.sessionsMu.Unlock()

	t.ensureServerRunning(session)

	select {
	case session.conn.reqChan <- msg:
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		return
	}

	// Notifications carry no ID and get no response body.
	var isRequest bool
	switch v := msg.(type) {
	case *jsonrpc.Request:
		isRequest = v.ID != jsonrpc.ID{}
	case *jsonrpc.Response:
		http.Error(w, "Invalid message type: response", http.StatusBadRequest)
		return
	default:
		isRequest = true
	}

	if isRequest {
		select {
		case resp := <-session.conn.respChan:
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.log.Error().Err(err).Msg("encode MCP response")
			}
		case <-r.Context().Done():
			http.Error(w, "Request cancelled", http.StatusRequestTimeout)
			return
		}
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSSE handles GET /mcp/sse for Server-Sent Events streaming.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session")
	var session *httpSession
	var exists bool

	if sessionID != "" {
		t.sessionsMu.RLock()
		session, exists = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
	}

	if !exists || session == nil {
		conn, err := t.Connect(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to create session: %v", err), http.StatusInternalServerError)
			return
		}
		sessionID = conn.SessionID()
		t.sessionsMu.RLock()
		session = t.sessions[sessionID]
		t.sessionsMu.RUnlock()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-MCP-Session-ID", sessionID)

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-session.conn.closed:
			return
		case msg := <-session.conn.respChan:
			data, err := json.Marshal(msg)
			if err != nil {
				t.log.Error().Err(err).Msg("marshal SSE message")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// handleHealth handles GET /mcp/health for health checks.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Read implements mcp.Connection. It delivers messages that HTTP handlers
// pushed onto the request channel.
func (c *httpConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case msg := <-c.reqChan:
		return msg, nil
	case <-c.closed:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection. Responses land on the response channel
// where the originating HTTP handler picks them up.
func (c *httpConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedFlag {
		return fmt.Errorf("connection closed")
	}

	select {
	case c.respChan <- msg:
		return nil
	case <-c.closed:
		return fmt.Errorf("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements mcp.Connection.
func (c *httpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedFlag {
		return nil
	}

	c.closedFlag = true
	close(c.closed)
	return nil
}

// SessionID implements mcp.Connection.
func (c *httpConnection) SessionID() string {
	return c.sessionID
}

// ensureServerRunning starts the MCP server loop for this session exactly
// once. The sync.Once per session prevents goroutine leaks when a client
// reuses its session ID across requests.
func (t *HTTPTransport) ensureServerRunning(session *httpSession) {
	if t.server == nil {
		return
	}

	t.serverOnceMu.Lock()
	once, exists := t.serverOnce[session.id]
	if !exists {
		once = &sync.Once{}
		t.serverOnce[session.id] = once
	}
	t.serverOnceMu.Unlock()

	transport := &sessionTransport{conn: session.conn}
	once.Do(func() {
		go func() {
			_ = t.server.Run(t.serverCtx, transport)
		}()
	})
}

// sessionTransport returns a specific pre-existing connection so Server.Run
// can serve an already established session.
type sessionTransport struct {
	conn mcp.Connection
}

// Connect implements mcp.Transport.
func (st *sessionTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	return st.conn, nil
}

func generateSessionID() string {
	return fmt.Sprintf("session_%d", time.Now().UnixNano())
}
