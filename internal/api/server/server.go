package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/api/middleware"
	"github.com/feral-file/gpp-indexer/internal/api/rest"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/providers/temporal"
	"github.com/feral-file/gpp-indexer/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug                 bool
	Host                  string
	Port                  int
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	AllowedOrigins        []string
	OrchestratorTaskQueue string
	// Authenticator guards the update trigger, nil leaves it open
	Authenticator *middleware.Authenticator
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server serves the read API, the update trigger and optionally /metrics
type Server struct {
	config         Config
	tables         store.Reader
	orchestrator   temporal.TemporalOrchestrator
	metricsHandler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a new API server. orchestrator and metricsHandler may be nil.
func New(cfg Config, tables store.Reader, orchestrator temporal.TemporalOrchestrator, metricsHandler http.Handler) *Server {
	return &Server{
		config:         cfg,
		tables:         tables,
		orchestrator:   orchestrator,
		metricsHandler: metricsHandler,
	}
}

// Router builds the gin engine serving every route
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.SetupCORS(s.config.AllowedOrigins),
	)

	rest.SetupRoutes(router, rest.NewHandler(s.tables, s.orchestrator, s.config.OrchestratorTaskQueue), s.config.Authenticator)

	if s.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	return router
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(listener)
}

// Serve serves on listener until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	logger.Info("Starting API server", zap.String("address", listener.Addr().String()))

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	logger.Info("Shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
