package server

import (
	"github.com/nfrund/relay/internal/middleware"
	"github.com/nfrund/relay/internal/transport"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	path := s.Cfg.GetRelayPath()

	s.E.GET(path, s.handler.Websocket)
	if rate := s.Cfg.GetHTTPRateLimit(); rate > 0 {
		s.E.POST(path, s.handler.HTTP, middleware.RateLimiter(rate, s.Cfg.GetHTTPRateBurst()))
	} else {
		s.E.POST(path, s.handler.HTTP)
	}

	// Everything else is a health check.
	s.E.Any("/*", transport.Health)
}
