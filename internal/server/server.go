// Package server provides the HTTP server for the gallery guard application.
// It handles routing, middleware configuration, and server lifecycle management.
//
// The server package follows a structured initialization approach with dependency
// injection and proper lifecycle management. Components are wired leaves first:
// cache, then the session manager and gallery services built on it, then the
// HTTP handlers and routes. The server handles graceful shutdown and background
// cache health checks.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/auth"
	"github.com/amanksolutions/galleryguard/internal/cache"
	"github.com/amanksolutions/galleryguard/internal/config"
	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/gallery"
	"github.com/amanksolutions/galleryguard/internal/handlers"
	"github.com/amanksolutions/galleryguard/internal/service"
	"github.com/amanksolutions/galleryguard/internal/session"
	"github.com/amanksolutions/galleryguard/internal/utils/ratelimit"
	"github.com/amanksolutions/galleryguard/internal/watermark"
)

// Handlers contains all HTTP handlers for the application.
// It centralizes handler management for consistent request processing
// and simplifies dependency injection throughout the application.
type Handlers struct {
	// SessionHandler manages viewing-session endpoints
	SessionHandler *handlers.SessionHandler

	// GalleryHandler manages gallery listing, delivery, and management endpoints
	GalleryHandler *handlers.GalleryHandler

	// ContactHandler manages the contact form endpoint
	ContactHandler *handlers.ContactHandler
}

// Server represents the gallery guard API server.
// It encapsulates all server components and handles server lifecycle management,
// including initialization, startup, and graceful shutdown.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Cache is the TTL store backing sessions and rate counters
	Cache cache.Store

	// Sessions manages anonymous viewing sessions
	Sessions *session.Manager

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// router handles HTTP routing
	router chi.Router

	// tokens validates manager bearer tokens
	tokens *auth.TokenService

	// limiter throttles the contact and upload endpoints in process
	limiter *ratelimit.Store

	// httpServer is the underlying HTTP server
	httpServer *http.Server
}

// NewServer creates a new server instance with all required components.
// It initializes the cache, session manager, gallery services, watermark
// engine, and mail relay, then sets up the HTTP routes.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
//
// Initialization follows dependency order: cache → session manager →
// gallery services → handlers → routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupCache(); err != nil {
		return nil, fmt.Errorf("failed to set up cache: %w", err)
	}

	s.Sessions = session.NewManager(s.Cache, cfg.Session)
	s.tokens = auth.NewTokenService(&cfg.ManagerAuth)
	s.limiter = newRequestLimiter()

	if err := s.setupHandlers(); err != nil {
		return nil, fmt.Errorf("failed to set up handlers: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupCache connects the TTL store that holds sessions and rate counters.
// Redis is used when configured; otherwise an in-process store serves
// single-instance deployments and tests.
func (s *Server) setupCache() error {
	if s.Config.Redis.UseInMemoryCache() {
		log.Info().Msg("Using in-memory session cache")
		s.Cache = cache.NewMemoryStore()
		return nil
	}

	store, err := cache.NewRedisStore(&s.Config.Redis)
	if err != nil {
		return err
	}

	log.Info().Str("addr", s.Config.Redis.Addr).Msg("Connected to Redis")
	s.Cache = store
	return nil
}

// newRequestLimiter builds the in-process throttle for the endpoints that
// are not covered by the cache-backed session rate limit. The contact form
// gets a tight budget since it triggers outbound mail; uploads get a wider
// one sized for gallery batches.
func newRequestLimiter() *ratelimit.Store {
	store := ratelimit.NewStore(ratelimit.Rate{RequestsPerSecond: 5, Burst: 20}, 5*time.Minute)
	store.SetRate(ratelimit.CategoryContact, ratelimit.Rate{RequestsPerSecond: 0.1, Burst: 3})
	store.SetRate(ratelimit.CategoryUpload, ratelimit.Rate{RequestsPerSecond: 2, Burst: 10})
	return store
}

// setupHandlers initializes all HTTP request handlers.
// It builds the gallery services on the configured root and wires them,
// the session manager, and the mail relay into their handlers.
//
// Returns:
//   - An error if the gallery root cannot be prepared
func (s *Server) setupHandlers() error {
	if err := os.MkdirAll(s.Config.Gallery.Root, 0o755); err != nil {
		return fmt.Errorf("preparing gallery root: %w", err)
	}

	resolver, err := gallery.NewResolver(s.Config.Gallery.Root)
	if err != nil {
		return fmt.Errorf("resolving gallery root: %w", err)
	}

	catalog := gallery.NewCatalog(resolver, s.Config.Gallery.PublicBaseURL)
	storage := gallery.NewStorage(resolver)
	engine := watermark.NewEngine(s.Config.Watermark)
	mailer := service.NewMailService(s.Config.Mail)

	s.Handlers = &Handlers{
		SessionHandler: handlers.NewSessionHandler(s.Sessions, s.Config.Session.RateLimitWindow),
		GalleryHandler: handlers.NewGalleryHandler(catalog, resolver, storage, engine),
		ContactHandler: handlers.NewContactHandler(mailer),
	}

	return nil
}

// Start starts the HTTP server and sets up signal handling for graceful shutdown.
// It runs in a blocking mode, waiting for either server errors or shutdown signals.
//
// Returns:
//   - An error if the server fails to start or encounters an error during operation
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, closing all connections properly.
// It ensures in-flight requests are completed before shutting down.
//
// Parameters:
//   - ctx: Context with timeout for the shutdown operation
//
// Returns:
//   - An error if shutdown fails within the context timeout
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	if err := s.Cache.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close session cache")
	} else {
		log.Info().Msg("Session cache closed")
	}

	return nil
}

// SetupMaintenanceTasks sets up periodic background tasks for the server.
// The cache is probed on a fixed interval so a dead Redis shows up in the
// logs before viewers start losing sessions. Expired session records need
// no sweeping since the cache evicts them by TTL.
func (s *Server) SetupMaintenanceTasks() {
	ticker := time.NewTicker(constants.CacheHealthCheckInterval)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), constants.CacheHealthCheckTimeout)
			if err := s.Cache.Ping(ctx); err != nil {
				log.Error().Err(err).Msg("Session cache health check failed")
			}
			cancel()
		}
	}()
}
