package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nfrund/relay/internal/relay"
)

// Start launches the background tasks and the HTTP server, then blocks until
// ctx is done and the server has shut down.
func (s *Server) Start(ctx context.Context) error {
	if err := s.startBackground(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.E.Start(s.Cfg.GetAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logStartup()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Cfg.GetShutdownTimeout())
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

// startBackground starts the query snapshot, the bus audit and the sample
// generators. They run until Shutdown.
func (s *Server) startBackground(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.state.Start(bgCtx, s.channels)

	if s.bus != nil {
		if err := relay.StartAudit(bgCtx, s.bus, s.channels); err != nil {
			cancel()
			return fmt.Errorf("start audit: %w", err)
		}
	}

	if err := s.generators.Start(bgCtx); err != nil {
		cancel()
		return fmt.Errorf("start generators: %w", err)
	}
	return nil
}
