package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/do/v2"

	"github.com/nfrund/relay/internal/app"
	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/middleware"
	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
	"github.com/nfrund/relay/internal/transport"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg config.Provider

	channels   *relay.Channels
	state      *relay.State
	generators *relay.Generators
	handler    *transport.Handler
	bus        *pubsub.WatermillBridge
	tracing    *app.Tracing

	cancel context.CancelFunc
}

// New creates a new Server instance from the application container.
func New(cfg config.Provider) (*Server, error) {
	i := app.New(cfg)

	handler, err := do.Invoke[*transport.Handler](i)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	setupErrorHandling(e)

	s := &Server{
		E:          e,
		Cfg:        cfg,
		channels:   do.MustInvoke[*relay.Channels](i),
		state:      do.MustInvoke[*relay.State](i),
		generators: do.MustInvoke[*relay.Generators](i),
		handler:    handler,
		tracing:    do.MustInvoke[*app.Tracing](i),
	}
	if cfg.GetBusMirror() {
		s.bus = do.MustInvoke[*pubsub.WatermillBridge](i)
	}
	return s, nil
}

// Channels exposes the relay channels, useful for testing.
func (s *Server) Channels() *relay.Channels {
	return s.channels
}

// Generators exposes the sample event generators, useful for testing.
func (s *Server) Generators() *relay.Generators {
	return s.generators
}

// setupErrorHandling logs unhandled errors with a stack trace and keeps echo's
// response for them.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
			err = echo.NewHTTPError(http.StatusInternalServerError)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// logStartup reports the effective configuration once the server is listening.
func (s *Server) logStartup() {
	slog.Info("Relay server started",
		"addr", s.Cfg.GetAddr(),
		"path", s.Cfg.GetRelayPath(),
		"passthrough_args", s.Cfg.GetPassThroughArgs(),
		"bus_mirror", s.Cfg.GetBusMirror(),
		"tracing", s.Cfg.GetTracingEnabled(),
	)
}
