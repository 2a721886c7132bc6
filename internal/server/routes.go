// Package server provides the HTTP server for the gallery guard application.
// It handles routing, middleware configuration, and server lifecycle management.
//
// The package follows a structured approach to route organization, with clear
// grouping based on functionality (sessions, gallery, contact) and proper
// protection for gated routes. CORS and other security headers are carefully
// configured to provide secure access while enabling legitimate API usage.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/auth"
	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/middleware"
	"github.com/amanksolutions/galleryguard/internal/utils"
	"github.com/amanksolutions/galleryguard/internal/utils/ratelimit"
)

// SetupRoutes configures the routes for the application.
// It creates a router hierarchy with middleware and grouped routes
// according to functionality for organized API structure.
//
// The configured routes include:
// - Health check and version endpoints (unprotected)
// - Viewing-session endpoints (create, validate, refresh)
// - Manager-only session endpoints (revoke, stats)
// - Gallery endpoints gated by a viewing session (list, serve)
// - Manager-only gallery management (upload, delete)
// - Contact form relay (rate limited)
//
// Route protection is handled through middleware: viewing sessions for
// image access, bearer tokens for management operations.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	allowedOrigins := s.Config.CORS.AllowedOrigins

	// Custom CORS middleware that applies to all routes
	// This ensures CORS headers are applied properly and consistently
	r.Use(corsMiddleware(allowedOrigins))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())

	// Health check and version routes (unprotected)
	r.Group(func(r chi.Router) {
		r.Get(constants.HealthPath, func(w http.ResponseWriter, r *http.Request) {
			if err := s.Cache.Ping(r.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
				return
			}

			utils.JSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"version": s.Config.App.Version,
			})
		})

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})

		r.Get("/api/routes", s.GetAPIRoutes)
	})

	// API routes
	r.Route(constants.APIBasePath, func(r chi.Router) {
		// Viewing-session routes
		r.Route("/sessions", func(r chi.Router) {
			// Public session endpoints; creation is throttled by the
			// cache-backed per-address limit inside the manager
			r.Group(func(r chi.Router) {
				r.Post("/", s.Handlers.SessionHandler.CreateSession)
				r.Post("/validate", s.Handlers.SessionHandler.ValidateSession)
				r.Post("/refresh", s.Handlers.SessionHandler.RefreshSession)
			})

			// Manager-only session endpoints
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireManager(s.tokens))
				r.Post("/revoke", s.Handlers.SessionHandler.RevokeSession)
				r.Get("/{token}/stats", s.Handlers.SessionHandler.SessionStats)
			})
		})

		// Gallery routes
		r.Route("/gallery", func(r chi.Router) {
			// Image access requires a live viewing session and charges
			// its request budget
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewingSession(s.Sessions))
				r.Get("/images", s.Handlers.GalleryHandler.ListImages)
				r.Get("/serve", s.Handlers.GalleryHandler.ServeImage)
			})

			// Manager-only gallery management
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireManager(s.tokens))
				r.Use(middleware.RateLimit(s.limiter, ratelimit.CategoryUpload))
				r.Post("/images", s.Handlers.GalleryHandler.UploadImage)
				r.Delete("/images", s.Handlers.GalleryHandler.DeleteImage)
			})
		})

		// Contact form relay
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.limiter, ratelimit.CategoryContact))
			r.Post("/contact", s.Handlers.ContactHandler.SubmitContactForm)
		})
	})

	s.router = r
}

// GetRouter returns the configured router.
//
// Returns:
//   - The chi.Router implementation used by the server
//
// This method is primarily used for testing and for
// integrating the router with other components.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// corsMiddleware creates a custom CORS middleware with the specified allowed origins.
// It handles Cross-Origin Resource Sharing to allow browsers to safely access the API
// from different domains while protecting against unauthorized cross-origin requests.
//
// Parameters:
//   - allowedOrigins: A list of origins that are allowed to access the API
//
// Returns:
//   - A middleware function that adds CORS headers to responses
//
// The middleware checks incoming requests against the allowed origins list,
// adds appropriate CORS headers to responses, and handles OPTIONS preflight
// requests. It supports credentials mode for authenticated cross-origin requests.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					if r.Method != http.MethodOptions {
						next.ServeHTTP(w, r)
						return
					}

					// Handle OPTIONS preflight requests
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID, X-Session-Token")
					w.Header().Set("Access-Control-Max-Age", "300")

					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			// Origin not allowed, continue without CORS headers
			next.ServeHTTP(w, r)
		})
	}
}

// GetAPIRoutes returns documentation about all API routes.
// This provides a self-documenting API endpoint that describes all available
// endpoints, their parameters, expected responses, and required authentication.
//
// Parameters:
//   - w: The HTTP response writer
//   - r: The HTTP request
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{}

	routes["sessions"] = map[string]interface{}{
		"POST /api/sessions": map[string]interface{}{
			"description": "Create an anonymous viewing session",
			"response": map[string]interface{}{
				"success":            true,
				"session_token":      "string - opaque session token",
				"expires_at":         "2023-01-01T12:00:00Z",
				"expires_in_seconds": 7200,
				"max_image_requests": 200,
			},
			"rate_limit": "5 sessions per client address per hour",
		},
		"POST /api/sessions/validate": map[string]interface{}{
			"description": "Check whether a session token is currently valid",
			"body": map[string]interface{}{
				"session_token": "string - the token to check",
			},
			"response": map[string]interface{}{
				"valid":   true,
				"message": "Session is valid",
			},
		},
		"POST /api/sessions/refresh": map[string]interface{}{
			"description": "Extend a live session to a full lifetime from now",
			"body": map[string]interface{}{
				"session_token": "string - the token to refresh",
			},
		},
		"POST /api/sessions/revoke": map[string]interface{}{
			"description": "Deactivate a session (manager only)",
			"headers": map[string]string{
				"Authorization": "Bearer {manager_token}",
			},
			"body": map[string]interface{}{
				"session_token": "string - the token to revoke",
			},
		},
		"GET /api/sessions/{token}/stats": map[string]interface{}{
			"description": "Read a session's usage counters (manager only)",
			"headers": map[string]string{
				"Authorization": "Bearer {manager_token}",
			},
		},
	}

	routes["gallery"] = map[string]interface{}{
		"GET /api/gallery/images": map[string]interface{}{
			"description": "List the images in a service's gallery folder, or in every service's folder",
			"headers": map[string]string{
				"X-Session-Token": "string - a live viewing-session token",
			},
			"query": map[string]string{
				"service_id":  "string - tenant owning the gallery; omit to list across all services",
				"folder_type": "string - 'gallery' or 'galleryHalf', default 'gallery'",
			},
		},
		"GET /api/gallery/serve": map[string]interface{}{
			"description": "Stream one watermarked image; charges the session's request budget",
			"headers": map[string]string{
				"X-Session-Token": "string - a live viewing-session token",
			},
			"query": map[string]string{
				"service_id":  "string - tenant owning the image",
				"folder_type": "string - 'gallery' or 'galleryHalf'",
				"image_name":  "string - file name within the folder",
			},
		},
		"POST /api/gallery/images": map[string]interface{}{
			"description": "Upload an image (manager only, multipart)",
			"headers": map[string]string{
				"Authorization": "Bearer {manager_token}",
			},
			"form": map[string]string{
				"image":       "file - the image to store",
				"service_id":  "string - tenant receiving the image",
				"folder_type": "string - 'gallery' or 'galleryHalf', default 'gallery'",
			},
		},
		"DELETE /api/gallery/images": map[string]interface{}{
			"description": "Delete an image (manager only)",
			"headers": map[string]string{
				"Authorization": "Bearer {manager_token}",
			},
		},
	}

	routes["contact"] = map[string]interface{}{
		"POST /api/contact": map[string]interface{}{
			"description": "Submit a contact form; the message is relayed by mail in the background",
			"body": map[string]interface{}{
				"name":    "string - sender name",
				"email":   "string - sender address",
				"subject": "string - message subject",
				"message": "string - message body",
			},
			"response": map[string]interface{}{
				"status":  "queued",
				"message": "Form received. Thank you!",
			},
		},
	}

	routes["system"] = map[string]interface{}{
		"GET /health": map[string]interface{}{
			"description": "Service and cache health probe",
		},
		"GET /version": map[string]interface{}{
			"description": "Application version and environment",
		},
	}

	utils.JSON(w, http.StatusOK, routes)
}
