package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server wraps the HTTP listener for the dashboard API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewRouter builds the API routes.
func NewRouter(h *Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{jobID}/runs", h.StartRun).Methods(http.MethodPost)
	api.HandleFunc("/reasons", h.ListReasons).Methods(http.MethodGet)

	api.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{runID}", h.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{runID}/results", h.GetResults).Methods(http.MethodGet)
	api.HandleFunc("/runs/{runID}/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/runs/{runID}/records/{recordID}/explain", h.ExplainRecord).Methods(http.MethodPost)
	api.HandleFunc("/runs/{runID}/summary", h.SummarizeRun).Methods(http.MethodPost)

	router.Use(RequestLogging(logger))
	return router
}

// NewServer creates the HTTP server; allowedOrigins feeds the CORS policy.
func NewServer(addr string, allowedOrigins []string, h *Handler, logger *zap.Logger) *Server {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      corsHandler.Handler(NewRouter(h, logger)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
