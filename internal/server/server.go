package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"transitbot/internal/handler"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP JSON facade over the resolvers.
type Server struct {
	addr   string
	mux    *http.ServeMux
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(addr string, h *handler.Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /api/bus", h.Bus)
	mux.HandleFunc("GET /api/rail", h.Rail)
	return &Server{addr: addr, mux: mux, logger: logger}
}

// Handler is the routed mux wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger)
}

// ListenAndServe serves until ctx is cancelled, then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
