package auth

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-google-gateway/internal/config"
	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer      = "https://accounts.google.com"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	OpExchange = "auth.exchange"
	OpIdentity = "auth.userinfo"
	OpRefresh  = "auth.refresh"
)

// Client talks to Google's OAuth2 and OIDC endpoints. It holds only
// read-only configuration; every call builds its own credentials.
type Client struct {
	oauth      oauth2.Config
	provider   *oidc.Provider
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls to Google.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(ctx context.Context, cfg config.OAuthConfig, opts ...Option) *Client {
	endpoint := google.Endpoint
	overrides := cfg.GetProviderEndpoints()
	if overrides.AuthURL != "" {
		endpoint.AuthURL = overrides.AuthURL
	}
	if overrides.TokenURL != "" {
		endpoint.TokenURL = overrides.TokenURL
	}
	userInfoURL := googleUserInfoURL
	if overrides.UserInfoURL != "" {
		userInfoURL = overrides.UserInfoURL
	}

	c := &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetCallbackURL(),
			Scopes:       uniqueScopes(cfg.GetScopes()),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Google's endpoints are fixed, so discovery is skipped.
	c.provider = (&oidc.ProviderConfig{
		IssuerURL:   googleIssuer,
		AuthURL:     endpoint.AuthURL,
		TokenURL:    endpoint.TokenURL,
		UserInfoURL: userInfoURL,
	}).NewProvider(c.context(ctx))

	return c
}

// AuthCodeURL builds the consent URL. It always asks for offline access and
// forces the consent prompt so Google issues a refresh token on every
// authorization. Without scopes the configured set is requested.
func (c *Client) AuthCodeURL(state string, scopes ...string) string {
	conf := c.oauth
	if len(scopes) > 0 {
		conf.Scopes = uniqueScopes(scopes)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades a single-use authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, errors.ErrMissingCode
	}

	tok, err := c.oauth.Exchange(c.context(ctx), code)
	if err != nil {
		return nil, errors.Upstream(OpExchange, err)
	}

	pair := &TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		pair.Scope = scope
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		pair.IDToken = idToken
	}
	return pair, nil
}

// FetchIdentity looks up the user behind a freshly exchanged token pair. The
// pair's access token is the only credential used for the call.
func (c *Client) FetchIdentity(ctx context.Context, pair *TokenPair) (*Identity, error) {
	if pair == nil || pair.AccessToken == "" {
		return nil, errors.ErrMissingAccessToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		Expiry:      pair.Expiry,
	})
	info, err := c.provider.UserInfo(c.context(ctx), ts)
	if err != nil {
		return nil, errors.Upstream(OpIdentity, err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, errors.Upstream(OpIdentity, err)
	}

	return &Identity{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// Refresh mints a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	if refreshToken == "" {
		return nil, errors.ErrMissingRefreshToken
	}

	tok, err := c.oauth.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Upstream(OpRefresh, err)
	}
	return &RefreshedToken{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// context attaches the configured HTTP client for both oauth2 and go-oidc.
func (c *Client) context(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oidc.ClientContext(ctx, c.httpClient)
}

// uniqueScopes drops duplicates and blanks, keeping first-seen order.
func uniqueScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
