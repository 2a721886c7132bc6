// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling and
// messaging. User-facing error messages are carefully crafted to be informative
// without revealing implementation details that could aid an attacker; in
// particular, a rejected path traversal attempt is reported to the client with
// the same message as a genuinely missing image.
package constants

// User-Facing Error Messages define standardized messages that can be safely presented to users.
const (
	// MsgAuthRequired indicates that the caller must authenticate to access the resource.
	MsgAuthRequired = "Authentication required"

	// MsgAccessDenied indicates that the caller lacks permission for the requested action.
	MsgAccessDenied = "You don't have permission to access this resource"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "An internal server error occurred"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgResourceNotFound indicates that the requested resource does not exist.
	MsgResourceNotFound = "The requested resource could not be found"

	// MsgMethodNotAllowed indicates that the HTTP method is not supported for the endpoint.
	MsgMethodNotAllowed = "This method is not allowed for this resource"

	// MsgMissingSessionToken indicates no X-Session-Token header was supplied.
	MsgMissingSessionToken = "Missing session token in headers"

	// MsgSessionNotFound indicates the token does not match a live session record.
	MsgSessionNotFound = "Session not found or expired"

	// MsgSessionDeactivated indicates the session was explicitly revoked.
	MsgSessionDeactivated = "Session has been deactivated"

	// MsgSessionExpired indicates the session passed its expiry time.
	MsgSessionExpired = "Session has expired"

	// MsgSessionQuotaExceeded indicates the session used up its image request quota.
	MsgSessionQuotaExceeded = "Session request limit exceeded"

	// MsgSessionValidationFailed is the generic failure reported when validation
	// itself errors; the underlying cause is logged, never surfaced.
	MsgSessionValidationFailed = "Session validation failed"

	// MsgSessionValid is returned by the introspection endpoint for live sessions.
	MsgSessionValid = "Session is valid"

	// MsgSessionCreated confirms a new viewing session.
	MsgSessionCreated = "Viewing session created successfully"

	// MsgSessionRefreshed confirms a viewing session extension.
	MsgSessionRefreshed = "Session refreshed successfully"

	// MsgSessionRevoked confirms a viewing session revocation.
	MsgSessionRevoked = "Session revoked successfully"

	// MsgSessionRateLimited is returned when an IP creates sessions too fast.
	MsgSessionRateLimited = "Too many session requests from this IP. Please try again later."

	// MsgImagesListed confirms a gallery listing.
	MsgImagesListed = "Images retrieved successfully"

	// MsgImageNotFound is the serve-path not-found message. It is intentionally
	// shared between missing files and rejected traversal attempts.
	MsgImageNotFound = "Image not found"

	// MsgGalleryNotFound is returned when a service gallery folder does not exist.
	MsgGalleryNotFound = "Gallery not found"

	// MsgImageUploaded confirms a stored gallery image.
	MsgImageUploaded = "Image uploaded successfully"

	// MsgImageDeleted confirms a removed gallery image.
	MsgImageDeleted = "Image deleted successfully"

	// MsgInvalidServiceID indicates the service identifier failed sanitization.
	MsgInvalidServiceID = "Invalid service ID"

	// MsgInvalidFolderKind indicates the folder kind is not a sanctioned value.
	MsgInvalidFolderKind = "Invalid folder type. Must be 'gallery' or 'galleryHalf'"

	// MsgInvalidImageName indicates the image name failed sanitization.
	MsgInvalidImageName = "Invalid image name"

	// MsgNotAnImage indicates the file content is not an image regardless of extension.
	MsgNotAnImage = "File is not a valid image"

	// MsgContactQueued confirms acceptance of a contact-form submission.
	MsgContactQueued = "Form received. Thank you!"
)

// Logger Constants define values used for structured logging.
const (
	// LogEventPathEscape is the log event recorded when a traversal attempt is rejected.
	// Escapes look like 404s to the client, so the log event is the only trace of them.
	LogEventPathEscape = "path_escape"

	// LogEventSessionCreated is the log event for viewing-session creation.
	LogEventSessionCreated = "session_created"

	// LogEventSessionRevoked is the log event for viewing-session revocation.
	LogEventSessionRevoked = "session_revoked"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
