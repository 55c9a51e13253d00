package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/relay/internal/graph"
	"github.com/nfrund/relay/internal/middleware"
)

// Executor runs GraphQL operations. *graph.Service implements it.
type Executor interface {
	Exec(ctx context.Context, req graph.Request) (*graph.Response, error)
	Execute(ctx context.Context, req graph.Request) (<-chan *graph.Response, error)
}

// Config tunes the websocket connections.
type Config struct {
	// InitTimeout is how long a client may take to send connection_init.
	InitTimeout time.Duration
	// KeepAlive is the interval of server keepalives. Zero disables them.
	KeepAlive time.Duration
	// WriteWait bounds a single frame write.
	WriteWait time.Duration
	// SendBuffer is the number of outbound frames buffered per connection.
	SendBuffer int
}

// DefaultConfig returns the connection settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		InitTimeout: 10 * time.Second,
		KeepAlive:   15 * time.Second,
		WriteWait:   10 * time.Second,
		SendBuffer:  256,
	}
}

// Handler serves GraphQL over websocket and plain HTTP.
type Handler struct {
	exec Executor
	cfg  Config

	// mu orders conns.Add against Shutdown so Wait never races an Add.
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

// NewHandler creates a Handler. Zero fields of cfg take their defaults.
func NewHandler(exec Executor, cfg Config) *Handler {
	def := DefaultConfig()
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = def.InitTimeout
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{exec: exec, cfg: cfg, ctx: ctx, cancel: cancel}
}

// Shutdown disconnects every websocket client and waits until their sessions
// are closed or ctx is done.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.cancel()
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Websocket upgrades the request and serves one connection until it closes.
// Requests that are not websocket upgrades get the health response.
func (h *Handler) Websocket(c echo.Context) error {
	if !c.IsWebSocket() {
		return Health(c)
	}

	logger := middleware.FromContext(c.Request().Context())
	if !h.track() {
		return c.String(http.StatusServiceUnavailable, "shutting down")
	}
	defer h.conns.Done()

	ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		Subprotocols:       []string{ProtocolTransportWS, ProtocolLegacyWS},
		InsecureSkipVerify: true, // No auth and no cookies, any origin may connect.
	})
	if err != nil {
		logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return nil
	}

	conn := newConn(h.ctx, ws, h.exec, h.cfg, logger)
	conn.serve()
	return nil
}

// track registers a connection unless Shutdown has begun.
func (h *Handler) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return false
	}
	h.conns.Add(1)
	return true
}

// HTTP executes a query or mutation sent as a JSON POST body.
func (h *Handler) HTTP(c echo.Context) error {
	var req graph.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": []ErrorPayload{{Message: "invalid request body"}},
		})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": []ErrorPayload{{Message: graph.ErrEmptyQuery.Error()}},
		})
	}

	resp, err := h.exec.Exec(c.Request().Context(), req)
	if errors.Is(err, graph.ErrSubscriptionNotAllowed) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": []ErrorPayload{{Message: "subscriptions require a websocket connection"}},
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Health answers any plain request with a text OK.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func isNormalClose(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
		errors.Is(err, context.Canceled)
}
