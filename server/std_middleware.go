package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const headerRequestID = "X-Request-Id"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
	}
	return append(chainedMiddleWare, mw...)
}

// TokenMiddleware is the chain for the OAuth endpoints, whose responses carry credentials.
func (s *Server) TokenMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return s.APIMiddleware(s.NoStoreMiddleware)
}

// wrapGlobal applies the middleware every request goes through, outermost first:
// CORS, request-scoped logger, request id, access log, metrics.
func (s *Server) wrapGlobal(next http.Handler) http.Handler {
	h := s.metrics.Middleware(next)
	h = hlog.AccessHandler(s.accessLog)(h)
	h = RequestIDMiddleware(h)
	h = hlog.NewHandler(log.Logger)(h)
	return s.corsHandler().Handler(h)
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.config.GetAllowedOrigins()
	return cors.New(cors.Options{
		AllowedOrigins:   origins.List(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: !origins.IsAllowedOrigin("*"),
		MaxAge:           86400,
	})
}

// accessLog writes one line per request. Only the path is logged: query
// strings on the callback carry authorization codes.
func (s *Server) accessLog(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if s.env == "DEV" {
		event = event.Str("method", colouredMethod(r.Method)).Str("status", colouredStatus(status))
	} else {
		event = event.Str("method", r.Method).Int("status", status)
	}
	event.
		Str("path", r.URL.Path).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// RequestIDMiddleware tags the request logger and the response with a request id,
// reusing the caller's X-Request-Id when present.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("recovered from panic")
				writeJSONError(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next(w, r)
	}
}

func (s *Server) NoStoreMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next(w, r)
	}
}
