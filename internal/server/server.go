// Package server provides the HTTP REST API for AdVision.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/config"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/generation"
	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/rendering"
	"github.com/jonathan/advision/internal/repair"
	"github.com/jonathan/advision/internal/report"
	"github.com/jonathan/advision/internal/server/middleware"
	"github.com/jonathan/advision/internal/server/ratelimit"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// Store is everything the handlers read from and write to storage.
// *db.DB satisfies it.
type Store interface {
	DBClient
	report.Store

	Ping(ctx context.Context) error

	CreateProject(ctx context.Context, userID uuid.UUID, name string, brief types.ProjectBrief) (*db.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]db.Project, error)
	DeleteProject(ctx context.Context, projectID, userID uuid.UUID) (bool, error)

	CreateAdCopies(ctx context.Context, projectID, userID uuid.UUID, contents []string, tone string) ([]db.AdCopy, error)
	GetAdCopy(ctx context.Context, adCopyID, userID uuid.UUID) (*db.AdCopy, error)
	DeleteAdCopy(ctx context.Context, adCopyID, userID uuid.UUID) (bool, error)

	SaveReadability(ctx context.Context, adCopyID, userID uuid.UUID, s readability.Snapshot) (*db.ReadabilityScore, error)
	LatestReadability(ctx context.Context, adCopyID, userID uuid.UUID) (*db.ReadabilityScore, error)
	DeleteReadability(ctx context.Context, scoreID, userID uuid.UUID) (bool, error)

	CreateKeywords(ctx context.Context, projectID, userID uuid.UUID, keywords []types.KeywordSuggestion) ([]db.Keyword, error)
	DeleteKeyword(ctx context.Context, keywordID, userID uuid.UUID) (bool, error)
	CreateAudiences(ctx context.Context, projectID, userID uuid.UUID, segments []types.AudienceSegment) ([]db.Audience, error)
	DeleteAudience(ctx context.Context, audienceID, userID uuid.UUID) (bool, error)
	CreateBrandStyle(ctx context.Context, projectID, userID uuid.UUID, brandName string, colors []string, font string) (*db.BrandStyle, error)
	DeleteBrandStyle(ctx context.Context, styleID, userID uuid.UUID) (bool, error)

	AppendChatMessage(ctx context.Context, conversationID, userID uuid.UUID, role, content, productName string) (*db.ChatMessage, error)
	ListChatMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]db.ChatMessage, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]db.ConversationSummary, error)
	DeleteConversation(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

var _ Store = (*db.DB)(nil)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	logger      *zap.Logger
	generator   *generation.Generator
	repairer    *repair.Repairer
	assembler   *report.Assembler
	pdfOptions  rendering.PDFOptions
	corsOrigins []string
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	closers     []func() error
}

// Config holds server configuration
type Config struct {
	Port               int
	DatabaseURL        string
	CORSAllowedOrigins []string
	PDF                rendering.PDFOptions
}

// Deps are the collaborators a Server is built from. New assembles them
// from the environment; tests pass fakes.
type Deps struct {
	Store     Store
	LLM       llm.Client
	Logger    *zap.Logger
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config

	Port               int
	CORSAllowedOrigins []string
	PDF                rendering.PDFOptions
}

// New connects to the database and the completion provider and creates a
// server. REDIS_URL, when set, enables the completion response cache.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closers := []func() error{func() error { database.Close(); return nil }}
	fail := func(err error) (*Server, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	if err := database.EnsureSchema(ctx); err != nil {
		return fail(fmt.Errorf("failed to apply schema: %w", err))
	}

	llmConfig, err := llm.ConfigFromEnv()
	if err != nil {
		return fail(fmt.Errorf("failed to load llm config: %w", err))
	}
	client, err := llm.NewClient(ctx, llmConfig, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to create llm client: %w", err))
	}
	closers = append(closers, client.Close)

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rdb, err := llm.ConnectRedis(ctx, redisURL)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
		closers = append(closers, rdb.Close)
		ttl, err := config.DurationFromEnv("LLM_CACHE_TTL", llm.DefaultCacheTTL)
		if err != nil {
			return fail(err)
		}
		client = llm.NewCachedClient(client, llm.NewRedisCache(rdb, ttl), llmConfig.Provider, logger)
		logger.Info("completion cache enabled", zap.Duration("ttl", ttl))
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create password config: %w", err))
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fail(fmt.Errorf("failed to create JWT config: %w", err))
	}

	s, err := NewWithDeps(Deps{
		Store:              database,
		LLM:                client,
		Logger:             logger,
		JWT:                jwtConfig,
		Password:           passwordConfig,
		RateLimit:          ratelimit.LoadConfig(),
		Port:               cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PDF:                cfg.PDF,
	})
	if err != nil {
		return fail(err)
	}
	s.closers = closers
	return s, nil
}

// NewWithDeps creates a server from explicit collaborators.
func NewWithDeps(deps Deps) (*Server, error) {
	if deps.Store == nil || deps.LLM == nil {
		return nil, errors.New("server requires a store and an llm client")
	}
	if deps.JWT == nil || deps.Password == nil {
		return nil, errors.New("server requires JWT and password configuration")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		store:       deps.Store,
		logger:      logger,
		generator:   generation.New(deps.LLM, logger),
		repairer:    repair.New(logger),
		assembler:   report.NewAssembler(deps.Store, logger),
		pdfOptions:  deps.PDF,
		corsOrigins: deps.CORSAllowedOrigins,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		jwtService:  NewJWTService(deps.JWT),
	}
	s.userService = NewUserService(deps.Store, deps.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", deps.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // generation and PDF printing are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	// Public
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /readability", s.handleScoreText)
	mux.HandleFunc("POST /repair", s.handleRepair)

	protected("PUT /auth/password", s.handleUpdatePassword)

	// Projects
	protected("GET /projects", s.handleListProjects)
	protected("POST /projects", s.handleCreateProject)
	protected("GET /projects/{id}", s.handleGetProject)
	protected("DELETE /projects/{id}", s.handleDeleteProject)

	// Ad copies and readability
	protected("POST /projects/{id}/ad-copies/generate", s.handleGenerateAdCopies)
	protected("GET /projects/{id}/ad-copies", s.handleListAdCopies)
	protected("POST /projects/{id}/ad-copies", s.handleCreateAdCopy)
	protected("DELETE /ad-copies/{id}", s.handleDeleteAdCopy)
	protected("POST /ad-copies/{id}/keywords/generate", s.handleGenerateAdCopyKeywords)
	protected("POST /ad-copies/{id}/readability", s.handleScoreAdCopy)
	protected("GET /ad-copies/{id}/readability", s.handleGetReadability)
	protected("DELETE /readability-scores/{id}", s.handleDeleteReadability)

	// Keywords, audiences, brand styles
	protected("POST /projects/{id}/keywords/generate", s.handleGenerateKeywords)
	protected("GET /projects/{id}/keywords", s.handleListKeywords)
	protected("POST /projects/{id}/keywords", s.handleCreateKeywords)
	protected("DELETE /keywords/{id}", s.handleDeleteKeyword)
	protected("POST /projects/{id}/audiences/generate", s.handleGenerateAudiences)
	protected("GET /projects/{id}/audiences", s.handleListAudiences)
	protected("POST /projects/{id}/audiences", s.handleCreateAudiences)
	protected("DELETE /audiences/{id}", s.handleDeleteAudience)
	protected("POST /projects/{id}/brand-styles/extract", s.handleExtractBrandStyle)
	protected("GET /projects/{id}/brand-styles", s.handleListBrandStyles)
	protected("POST /projects/{id}/brand-styles", s.handleCreateBrandStyle)
	protected("DELETE /brand-styles/{id}", s.handleDeleteBrandStyle)

	// Reports
	protected("GET /projects/{id}/report", s.handleReportHTML)
	protected("GET /projects/{id}/report.pdf", s.handleReportPDF)

	// Design suggestions and chat history
	protected("POST /design-suggestions", s.handleDesignSuggestion)
	protected("GET /conversations", s.handleListConversations)
	protected("GET /conversations/{id}", s.handleGetConversation)
	protected("POST /conversations/{id}", s.handleContinueConversation)
	protected("DELETE /conversations/{id}", s.handleDeleteConversation)

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close stops the rate limiter and releases the database, cache and
// completion client.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
	s.closers = nil
}

// withCORS adds CORS headers. With no configured origins every origin is
// allowed.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.corsOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
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
		s.setRateLimitHeaders(w, info)

		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check: database unreachable", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps err to a status, logs server-side failures and writes a
// short client-facing message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	s.errorResponse(w, status, publicMessage(err, status))
}

// handleRegister handles user registration requests.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Register(w, r)
}

// handleLogin handles user login requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Login(w, r)
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted; the peer address is used.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Round(time.Second).Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Duration("retry_after", info.RetryAfter))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// userID returns the authenticated caller, writing a 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the {id} path value, writing a 400 when malformed.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid id: %q", raw))
		return uuid.Nil, false
	}
	return id, true
}

// maxJSONBody bounds request bodies outside of logo uploads.
const maxJSONBody = 1 << 20

// validatable is implemented by every request DTO in types.
type validatable interface {
	Validate() error
}

// decodeJSON decodes and validates a request body into dst, writing a 400
// on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := dst.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// toneOrDefault trims a requested tone, falling back to the default tone.
func toneOrDefault(tone string) string {
	if t := strings.TrimSpace(tone); t != "" {
		return t
	}
	return types.DefaultTone
}
