package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/playdex/claim-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	flowService    driving.AuthFlowService
	sessionService driving.SessionService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)

	cookieSecure bool
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// CookieSecure marks the session cookie Secure. Disable only for
	// local development over plain HTTP.
	CookieSecure bool

	// AllowedOrigins for CORS. Empty disables CORS handling.
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		Version:      "dev",
		CookieSecure: true,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	flowService driving.AuthFlowService,
	sessionService driving.SessionService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		flowService:    flowService,
		sessionService: sessionService,
		db:             db,
		redisClient:    redisClient,
		cookieSecure:   cfg.CookieSecure,
	}

	var handler http.Handler = s.router
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	sessionMiddleware := NewSessionMiddleware(s.sessionService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Flow endpoints (public). The callback receives redirects from the
	// identity provider.
	s.router.HandleFunc("GET /auth/login", s.handleLogin)
	s.router.HandleFunc("GET /auth/callback", s.handleCallback)

	// Session endpoints
	s.router.HandleFunc("POST /auth/logout", s.handleLogout)
	s.router.HandleFunc("POST /auth/refresh", s.handleRefresh)
	s.router.Handle("GET /auth/me",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleMe)))
}

// Start starts the HTTP server. Blocks until the listener fails or the
// server is shut down via Stop.
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
