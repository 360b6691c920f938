// Package workspace issues single Calendar, Drive and Gmail calls on behalf
// of one caller, authenticated with that caller's access token.
package workspace

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-google-gateway/internal/config"
	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// Factory builds request-scoped Sessions. It holds no credentials.
type Factory struct {
	endpoints  config.APIEndpoints
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Factory)

// WithHTTPClient sets the client whose transport carries the authenticated calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Factory) {
		f.httpClient = hc
	}
}

// WithClock replaces time.Now, used for the calendar lower bound.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

func NewFactory(endpoints config.APIEndpoints, opts ...Option) *Factory {
	f := &Factory{endpoints: endpoints, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Session is one caller's credential wrapped around a fresh HTTP client.
// It must not outlive the request it was created for.
type Session struct {
	client    *http.Client
	endpoints config.APIEndpoints
	now       func() time.Time
}

// NewSession installs accessToken as the only credential of a new client.
// An empty token fails before anything touches the network.
func (f *Factory) NewSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, errors.ErrMissingAccessToken
	}
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return &Session{
		client:    oauth2.NewClient(ctx, ts),
		endpoints: f.endpoints,
		now:       f.now,
	}, nil
}

func (s *Session) options(endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(s.client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}
