// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants related to routing
// and request parameters. These constants ensure consistent API patterns and URL
// structure throughout the application, making the API more predictable and easier
// to maintain.
package constants

// Base Routes define the root URL paths for different parts of the API.
const (
	// APIBasePath is the root path prefix for all API endpoints.
	APIBasePath = "/api"

	// HealthPath is the endpoint for health checks and system status.
	HealthPath = "/health"

	// ServeImagePath is the gated image delivery endpoint; list responses embed
	// it when constructing per-image retrieval URLs.
	ServeImagePath = "/api/gallery/serve"
)

// URL Parameters define path parameter names used in route definitions.
const (
	// ParamToken is the URL parameter for viewing-session tokens.
	ParamToken = "token"
)

// Query and Form Parameters define parameter names shared by the gallery endpoints.
const (
	// QueryParamServiceID identifies the tenant owning a set of images.
	QueryParamServiceID = "service_id"

	// QueryParamFolderType selects the asset class within a service.
	QueryParamFolderType = "folder_type"

	// QueryParamImageName names a single asset within a folder.
	QueryParamImageName = "image_name"

	// FormFieldImage is the multipart field carrying an uploaded image.
	FormFieldImage = "image"
)

// Context Keys name values stored on the request context by middleware.
const (
	// RequestIDContextKey stores the per-request correlation identifier.
	RequestIDContextKey = "request_id"

	// SessionContextKey stores the validated viewing session.
	SessionContextKey = "viewing_session"

	// ManagerContextKey stores the authenticated manager principal name.
	ManagerContextKey = "manager"
)
