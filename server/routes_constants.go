package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex   = "/{$}"
	RouteMetrics = "/metrics"

	// Google OAuth
	RouteGoogleAuthURL  = "/auth/google/url"
	RouteGoogleCallback = "/auth/google/callback"
	RouteGoogleRefresh  = "/auth/google/refresh"

	// Google API proxy
	RouteCalendarEvents = "/api/calendar/events"
	RouteDriveFiles     = "/api/drive/files"
	RouteDriveFile      = "/api/drive/files/{fileId}"
	RouteGmailMessages  = "/api/gmail/messages"
	RouteGmailSend      = "/api/gmail/send"
)
