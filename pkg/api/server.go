package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lleps/peinbol/pkg/api/handlers"
	"github.com/lleps/peinbol/pkg/api/middleware"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/repositories"
	"github.com/lleps/peinbol/pkg/state"
)

type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Addr      string
	Snapshots state.SnapshotStore
	// Repository serves the stats routes; nil answers them with 503
	Repository repositories.Repository
	StartedAt  time.Time
}

// NewAPIServer creates a new http.Server for the admin API
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	router := mux.NewRouter()
	router.Use(middleware.Logging, middleware.CORS)
	router.HandleFunc("/status", handlers.HandleStatus(opts.Snapshots, startedAt)).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/world", handlers.HandleWorld(opts.Snapshots)).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/scoreboard", handlers.HandleScoreboard(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/players/{name}", handlers.HandlePlayerStats(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)

	return &APIServer{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Stop is called
func (s *APIServer) Start() {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
