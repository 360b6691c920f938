package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	// OAuth: responses carry tokens and must not be cached
	s.RegisterRouteFunc("GET "+RouteGoogleAuthURL, ChainMiddleware(s.AuthURLHandler(), s.TokenMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteGoogleCallback, ChainMiddleware(s.CallbackHandler(), s.TokenMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteGoogleRefresh, ChainMiddleware(s.RefreshHandler(), s.TokenMiddleware()...))

	// Google API proxy, authenticated with the caller's access token
	s.RegisterRouteFunc("GET "+RouteCalendarEvents, ChainMiddleware(s.ListCalendarEventsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCalendarEvents, ChainMiddleware(s.CreateCalendarEventHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteDriveFiles, ChainMiddleware(s.ListDriveFilesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteDriveFile, ChainMiddleware(s.DownloadDriveFileHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteGmailMessages, ChainMiddleware(s.ListGmailMessagesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteGmailSend, ChainMiddleware(s.SendGmailMessageHandler(), s.APIMiddleware()...))
}
