// Package httpapi exposes the recommendation and ingestion services over HTTP.
//
// Routes:
//   - POST /embeddings       ingest a post, body {"blogPath": "..."}
//   - POST /recommendations  related posts for a post, body {"blogPath": "..."}
//   - GET  /list-table       keys of every stored post
//   - GET  /index/status     consistency report for the vector index
//   - GET  /healthz          503 when the dependency check fails
//   - GET  /metrics          Prometheus metrics, when a handler is supplied
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Services groups the driving ports the HTTP API dispatches to.
type Services struct {
	Recommend driving.RecommendationService
	Ingest    driving.IngestService
	Index     driving.IndexService

	// Metrics is served on /metrics when non-nil.
	Metrics http.Handler

	// Check backs /healthz. A nil Check always reports healthy.
	Check func(ctx context.Context) error
}

// Validate checks that all required services are set.
func (s *Services) Validate() error {
	if s.Recommend == nil {
		return errors.New("recommendation service is required")
	}
	if s.Ingest == nil {
		return errors.New("ingest service is required")
	}
	if s.Index == nil {
		return errors.New("index service is required")
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	services *Services
	router   *mux.Router
}

// NewServer creates a server and registers its routes.
func NewServer(services *Services) (*Server, error) {
	if err := services.Validate(); err != nil {
		return nil, fmt.Errorf("validating services: %w", err)
	}

	s := &Server{
		services: services,
		router:   mux.NewRouter(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.Use(requestID, accessLog)

	s.router.HandleFunc("/embeddings", s.handleIngest).Methods(http.MethodPost)
	s.router.HandleFunc("/recommendations", s.handleRecommend).Methods(http.MethodPost)
	s.router.HandleFunc("/recommendations", handlePreflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/list-table", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/index/status", s.handleIndexStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	if s.services.Metrics != nil {
		s.router.Handle("/metrics", s.services.Metrics).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr and serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
