// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the
// application. These constants provide sensible defaults for configuration
// settings, establish boundaries for resource usage, and define the session
// and gallery policy numbers. Changes to these values may significantly impact
// application behavior and security.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// Viewing Session Policy values govern anonymous gallery access.
// These match the figures the session endpoints advertise to clients.
const (
	// DefaultSessionMaxRequests is the number of gated image fetches a single
	// viewing session may perform before it is exhausted.
	DefaultSessionMaxRequests = 200

	// DefaultSessionRateLimit is the number of sessions a single client IP may
	// create within one rate-limit window.
	DefaultSessionRateLimit = 5
)

// Cache Key Namespaces partition the shared TTL cache between record kinds.
const (
	// SessionKeyPrefix namespaces viewing-session records in the cache.
	SessionKeyPrefix = "viewing_session:"

	// RateLimitKeyPrefix namespaces session-creation counters in the cache.
	RateLimitKeyPrefix = "session_rate_limit:"
)

// File Size Limits define the maximum allowed sizes for various uploads.
// These constants help prevent denial of service via excessive resource consumption.
const (
	// MaxRequestBodySize is the maximum size in bytes for JSON request bodies.
	MaxRequestBodySize = 1048576 // 1MB in bytes

	// MaxUploadSize is the maximum size in bytes for a multipart image upload.
	MaxUploadSize = 32 << 20 // 32MB
)

// Gallery Layout values fix the on-disk shape of the protected asset tree:
// root/<service_id>/<folder_kind>/<filename>.
const (
	// FolderKindGallery holds full-size assets, served with the full watermark.
	FolderKindGallery = "gallery"

	// FolderKindGalleryHalf holds reduced assets, served with the subtle watermark.
	FolderKindGalleryHalf = "galleryHalf"
)

// Watermark defaults control the compositing engine when configuration is silent.
const (
	// DefaultWatermarkText is drawn when no watermark image asset is available.
	DefaultWatermarkText = "amanksolutions.com"

	// WatermarkWidthRatio scales the mark relative to the target image width.
	WatermarkWidthRatio = 1.05

	// WatermarkFullOpacity is the blend strength of the primary mark instance.
	WatermarkFullOpacity = 1.0

	// WatermarkSubtleOpacity is the blend strength of secondary and half-variant marks.
	WatermarkSubtleOpacity = 0.2

	// JPEGEncodeQuality is used when re-encoding watermarked JPEG sources.
	JPEGEncodeQuality = 95
)

// Manager authentication defaults.
const (
	// DefaultManagerTokenIssuer is the expected issuer claim on management tokens.
	DefaultManagerTokenIssuer = "galleryguard"
)
