// Package server provides the HTTP REST API for the deal flow platform.
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

	"github.com/go-playground/validator/v10"
	"github.com/harper/dealflow/internal/config"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/fetch"
	"github.com/harper/dealflow/internal/ingest"
	"github.com/harper/dealflow/internal/jobs"
	"github.com/harper/dealflow/internal/llm"
	"github.com/harper/dealflow/internal/outreach"
	"github.com/harper/dealflow/internal/research"
	"github.com/harper/dealflow/internal/server/middleware"
	"github.com/harper/dealflow/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	jobManager  *jobs.Manager
	registry    *ingest.Registry
	generator   *outreach.Generator
	researcher  *research.Researcher
	llmClient   llm.Client
	validator   *validator.Validate
	cancelJobs  context.CancelFunc
}

// Config holds server configuration
type Config struct {
	Port             int
	DatabaseURL      string
	GeminiAPIKey     string
	CrunchbaseAPIKey string
	MCAProvider      string
	MCAAPIKey        string
	SearchAPIKey     string
	SearchEngineID   string
	Verbose          bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	// Connect to database
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		db:        database,
		validator: validator.New(),
	}

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Initialize authentication services
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	// Optional LLM client: outreach falls back to templates without one
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(context.Background(), llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("[SERVER] Gemini client unavailable, using template outreach: %v", err)
		} else {
			s.llmClient = client
		}
	}
	s.generator = outreach.NewGenerator(s.llmClient, cfg.Verbose)

	// Optional startup research: requires a Custom Search key and engine ID
	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		researcher, err := research.NewResearcher(context.Background(), cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			log.Printf("[SERVER] Research unavailable: %v", err)
		} else {
			s.researcher = researcher
		}
	}

	// Discovery sources share a cached fetcher for scraped pages
	fetcher := fetch.NewCachedFetcher(database, fetch.DefaultCachedFetcherConfig())
	s.registry = ingest.NewRegistry(
		ingest.NewYCSource(),
		ingest.NewWellfoundSource(fetcher),
		ingest.NewCrunchbaseSource(cfg.CrunchbaseAPIKey),
		ingest.NewMCASource(cfg.MCAProvider, cfg.MCAAPIKey),
	)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	s.cancelJobs = cancelJobs
	s.jobManager = jobs.NewManager(jobCtx, database, s.registry, cfg.Verbose)

	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints
	mux.HandleFunc("POST /api/v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", s.authHandler.Refresh)
	mux.Handle("GET /api/v1/auth/me", protected(s.handleMe))
	mux.Handle("PUT /api/v1/auth/me/thesis", protected(s.handleUpdateThesis))

	// Startup endpoints
	mux.Handle("GET /api/v1/startups", protected(s.handleListStartups))
	mux.Handle("POST /api/v1/startups", protected(s.handleCreateStartup))
	mux.Handle("GET /api/v1/startups/stats", protected(s.handleStartupStats))
	mux.Handle("GET /api/v1/startups/{id}", protected(s.handleGetStartup))
	mux.Handle("PUT /api/v1/startups/{id}", protected(s.handleUpdateStartup))
	mux.Handle("DELETE /api/v1/startups/{id}", protected(s.handleDeleteStartup))
	mux.Handle("POST /api/v1/startups/{id}/score", protected(s.handleRescoreStartup))
	mux.Handle("GET /api/v1/startups/{id}/research", protected(s.handleResearchStartup))

	// Deal pipeline endpoints
	mux.Handle("GET /api/v1/deals", protected(s.handleListDeals))
	mux.Handle("POST /api/v1/deals", protected(s.handleCreateDeal))
	mux.Handle("GET /api/v1/deals/pipeline", protected(s.handleDealPipeline))
	mux.Handle("GET /api/v1/deals/{id}", protected(s.handleGetDeal))
	mux.Handle("PUT /api/v1/deals/{id}", protected(s.handleUpdateDeal))
	mux.Handle("DELETE /api/v1/deals/{id}", protected(s.handleDeleteDeal))
	mux.Handle("POST /api/v1/deals/{id}/notes", protected(s.handleAddDealNote))

	// Outreach endpoints
	mux.Handle("GET /api/v1/outreach", protected(s.handleListOutreach))
	mux.Handle("POST /api/v1/outreach", protected(s.handleCreateOutreach))
	mux.Handle("POST /api/v1/outreach/generate", protected(s.handleGenerateOutreach))
	mux.Handle("GET /api/v1/outreach/stats", protected(s.handleOutreachStats))
	mux.Handle("GET /api/v1/outreach/templates", protected(s.handleOutreachTemplates))
	mux.Handle("GET /api/v1/outreach/{id}", protected(s.handleGetOutreach))
	mux.Handle("PUT /api/v1/outreach/{id}", protected(s.handleUpdateOutreach))
	mux.Handle("POST /api/v1/outreach/{id}/send", protected(s.handleSendOutreach))
	mux.Handle("DELETE /api/v1/outreach/{id}", protected(s.handleDeleteOutreach))

	// Discovery endpoints
	mux.Handle("POST /api/v1/discovery/run", protected(s.handleDiscoveryRun))
	mux.Handle("GET /api/v1/discovery/sources", protected(s.handleDiscoverySources))
	mux.Handle("GET /api/v1/discovery/jobs/{job_id}", protected(s.handleDiscoveryStatus))
	mux.Handle("GET /api/v1/discovery/jobs/{job_id}/results", protected(s.handleDiscoveryResults))
	mux.Handle("GET /api/v1/discovery/jobs/{job_id}/events", protected(s.handleDiscoveryEvents))
	mux.Handle("POST /api/v1/discovery/results/{id}/save", protected(s.handleSaveDiscoveryResult))
	mux.Handle("POST /api/v1/discovery/results/{id}/pass", protected(s.handlePassDiscoveryResult))
	mux.Handle("GET /api/v1/discovery/saved", protected(s.handleListSavedResults))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for SSE job streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop background discovery jobs and the rate limiter cleanup goroutine
	if s.cancelJobs != nil {
		s.cancelJobs()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
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

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
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
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.authHandler.MeWithUserID(w, r, userID)
}

// handleUpdateThesis replaces the authenticated user's fund thesis.
func (s *Server) handleUpdateThesis(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.authHandler.UpdateThesisWithUserID(w, r, userID)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// extractClientID identifies the caller for rate limiting. RemoteAddr is
// the source of truth; honoring X-Forwarded-For would need a trusted proxy
// list first.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
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

	writeJSON(w, http.StatusTooManyRequests, response)
}
