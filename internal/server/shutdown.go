package server

import (
	"context"
	"errors"
	"log/slog"
)

// Shutdown stops the generators, disconnects every client, stops the HTTP
// server and releases the bus and tracer.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down relay server")

	s.generators.Stop()

	var errs []error
	if err := s.handler.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.tracing != nil && s.tracing.Cleanup != nil {
		s.tracing.Cleanup()
	}

	return errors.Join(errs...)
}
