package http

import "github.com/go-chi/chi/v5"

// Router exposes the configured router so tests can mount extra handlers behind the
// server's middleware chain.
func (s *Server) Router() chi.Router {
	return s.router
}
