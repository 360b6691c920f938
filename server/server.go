package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-google-gateway/auth"
	"github.com/jrsteele09/go-google-gateway/internal/config"
	"github.com/jrsteele09/go-google-gateway/internal/metrics"
	"github.com/jrsteele09/go-google-gateway/state"
	"github.com/jrsteele09/go-google-gateway/workspace"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	handler   http.Handler
	routes    []string
	config    config.Config
	auth      *auth.Client
	states    *state.Codec
	workspace *workspace.Factory
	metrics   *metrics.Metrics
}

type options struct {
	httpClient    *http.Client
	workspaceOpts []workspace.Option
}

type Option func(*options)

// WithHTTPClient sets the HTTP client for every call to Google.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithWorkspaceOptions passes extra options to the Google API session factory.
func WithWorkspaceOptions(opts ...workspace.Option) Option {
	return func(o *options) {
		o.workspaceOpts = append(o.workspaceOpts, opts...)
	}
}

// New wires the gateway from cfg. All state built here is read-only once New returns.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to register metrics: %w", err)
	}

	maxAge, err := cfg.GetStateMaxAgeSeconds()
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid state config: %w", err)
	}
	stateKey := cfg.GetStateSecret()
	if len(stateKey) == 0 {
		log.Warn().Msg("STATE_SECRET is not set, using a generated key; authorizations in flight will not survive a restart")
		stateKey = state.GenerateKey()
	}

	var authOpts []auth.Option
	workspaceOpts := o.workspaceOpts
	if o.httpClient != nil {
		authOpts = append(authOpts, auth.WithHTTPClient(o.httpClient))
		workspaceOpts = append([]workspace.Option{workspace.WithHTTPClient(o.httpClient)}, workspaceOpts...)
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   auth.NewClient(ctx, cfg, authOpts...),
		states: state.NewCodec(state.Options{
			HashKey:            stateKey,
			MaxAge:             maxAge,
			DefaultRedirectURI: cfg.GetDefaultRedirectURI(),
			AllowedSchemes:     cfg.GetAllowedRedirectSchemes(),
		}),
		workspace: workspace.NewFactory(cfg.GetAPIEndpoints(), workspaceOpts...),
		metrics:   m,
	}

	s.initRoutes()
	s.handler = s.wrapGlobal(s.mux)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
