// Package server provides the HTTP REST API for the talent lifecycle service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/server/middleware"
	"github.com/jonathan/talent-lifecycle/internal/server/ratelimit"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Store is everything the API reads and writes: the orchestrator's store,
// the reporting source and single-employer lookups.
type Store interface {
	lifecycle.Store
	reporting.Source
	GetEmployer(ctx context.Context, id uuid.UUID) (*types.Employer, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	handler      http.Handler
	store        Store
	authorizer   *scope.Authorizer
	orchestrator *lifecycle.Orchestrator
	engine       *reporting.Engine
	jwtService   *JWTService
	rateLimiter  ratelimit.Backend
	bulkLimit    int
	onShutdown   []func()
}

// Config holds server configuration
type Config struct {
	Port                 string
	BulkLimit            int
	TrustedDocumentHosts []string
	CertificatePrefix    string
	Jurisdictions        *scope.Map
	JWT                  *config.JWTConfig
	// RateLimiter overrides the backend built from RATE_LIMIT_* and REDIS_URL.
	RateLimiter ratelimit.Backend
}

// New creates a new server instance over store
func New(cfg Config, store Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	if cfg.Port == "" {
		cfg.Port = config.DefaultPort
	}
	if cfg.BulkLimit <= 0 {
		cfg.BulkLimit = config.DefaultBulkLimit
	}

	authorizer := scope.NewAuthorizer(cfg.Jurisdictions)
	s := &Server{
		store:      store,
		authorizer: authorizer,
		orchestrator: lifecycle.NewOrchestrator(store, authorizer, lifecycle.Config{
			CertificatePrefix:    cfg.CertificatePrefix,
			TrustedDocumentHosts: cfg.TrustedDocumentHosts,
		}),
		engine:      reporting.NewEngine(store),
		jwtService:  NewJWTService(cfg.JWT),
		rateLimiter: cfg.RateLimiter,
		bulkLimit:   cfg.BulkLimit,
	}

	// Initialize rate limiter
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewBackend(context.Background(), ratelimit.LoadConfig())
	}

	// Authenticated routes
	api := http.NewServeMux()
	api.HandleFunc("POST /applications/bulk-status", s.handleBulkTransition(types.PipelineApplication))
	api.HandleFunc("POST /enrollments/bulk-status", s.handleBulkTransition(types.PipelineEnrollment))
	api.HandleFunc("POST /verifications/bulk-status", s.handleBulkTransition(types.PipelineVerification))
	api.HandleFunc("POST /applications/{id}/status", s.handleTransition(types.PipelineApplication))
	api.HandleFunc("POST /enrollments/{id}/status", s.handleTransition(types.PipelineEnrollment))
	api.HandleFunc("POST /verifications/{id}/status", s.handleTransition(types.PipelineVerification))
	api.HandleFunc("POST /verifications", s.handleSubmitVerification)
	api.HandleFunc("GET /stats", s.handleStats)
	api.HandleFunc("GET /employers/{id}/quota", s.handleEmployerQuota)
	api.HandleFunc("GET /talents", s.handleListTalents)
	api.HandleFunc("GET /transitions/{kind}/{status}", s.handleAllowedNext)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/", middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(api))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Bulk batches run sequentially
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// JWT returns the token service used to authenticate requests.
func (s *Server) JWT() *JWTService {
	return s.jwtService
}

// OnShutdown registers fn to run after the HTTP server has stopped.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.shutdownHooks()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.shutdownHooks()
	log.Println("Server stopped")
	return nil
}

func (s *Server) shutdownHooks() {
	// Stop rate limiter cleanup goroutine or redis client
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, fn := range s.onShutdown {
		fn()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failureResponse writes a typed failure with the status HTTPStatus picks for it.
func (s *Server) failureResponse(w http.ResponseWriter, err error) {
	s.jsonResponse(w, HTTPStatus(err), newErrorBody(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
