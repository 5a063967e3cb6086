// Path: internal/delivery/rest/server.go
package rest

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-viewer/internal/events"
)

// PageRoutes is implemented by delivery layers that serve HTML pages.
type PageRoutes interface {
	RegisterRoutes(r chi.Router)
}

// Server is the HTTP server for the viewer.
type Server struct {
	httpServer *http.Server
}

// NewRouter wires the action API, the event stream, ops endpoints and,
// when given, the HTML pages.
func NewRouter(svc viewerService, broker *events.Broker, pages PageRoutes) http.Handler {
	h := NewViewHandlers(svc, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/events", h.Stream)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/view", h.GetView)
		r.Post("/page", h.SetPage)
		r.Post("/size", h.SetPageSize)
		r.Post("/brand", h.SetBrand)
		r.Post("/filters", h.SetFilters)
		r.Post("/sort", h.SetSort)
		r.Put("/favorites/{uuid}", h.AddFavorite)
		r.Delete("/favorites/{uuid}", h.RemoveFavorite)
	})

	if pages != nil {
		pages.RegisterRoutes(r)
	}
	return r
}

// NewServer creates and configures a new HTTP server. Request contexts
// derive from ctx, so open event streams end when ctx is cancelled.
func NewServer(ctx context.Context, port string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			BaseContext:       func(net.Listener) context.Context { return ctx },
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       15 * time.Second,
		},
	}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
