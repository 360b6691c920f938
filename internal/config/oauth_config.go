package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	clientIDEnvVar     = "GOOGLE_CLIENT_ID"
	clientSecretEnvVar = "GOOGLE_CLIENT_SECRET"

	// CallbackPath is appended to the backend URL to form the redirect URL registered with Google.
	CallbackPath = "/auth/google/callback"
)

// DefaultScopes are requested when GOOGLE_SCOPES is not set.
var DefaultScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetCallbackURL() string
	GetScopes() []string
	GetDefaultRedirectURI() string
	GetAllowedRedirectSchemes() []string
	GetStateSecret() []byte
	GetStateMaxAgeSeconds() (int, error)
	GetProviderEndpoints() ProviderEndpoints
}

// ProviderEndpoints overrides Google's endpoints. Empty fields keep the Google defaults.
type ProviderEndpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

type OAuth struct {
	ClientID               string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret           string        `env:"GOOGLE_CLIENT_SECRET"`
	BackendURL             string        `env:"BACKEND_URL" envDefault:"http://localhost:3000"`
	MobileRedirectURI      string        `env:"MOBILE_REDIRECT_URI" envDefault:"manus20241217222156://oauth/callback"`
	AllowedRedirectSchemes []string      `env:"ALLOWED_REDIRECT_SCHEMES" envSeparator:","`
	StateSecret            string        `env:"STATE_SECRET"`
	StateMaxAge            time.Duration `env:"STATE_MAX_AGE" envDefault:"1h"`
	Scopes                 []string      `env:"GOOGLE_SCOPES" envSeparator:","`
	AuthURL                string        `env:"GOOGLE_AUTH_URL"`
	TokenURL               string        `env:"GOOGLE_TOKEN_URL"`
	UserInfoURL            string        `env:"GOOGLE_USERINFO_URL"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetCallbackURL() string {
	return strings.TrimRight(o.BackendURL, "/") + CallbackPath
}

func (o OAuth) GetScopes() []string {
	scopes := trimCSV(o.Scopes)
	if len(scopes) == 0 {
		return append([]string(nil), DefaultScopes...)
	}
	return scopes
}

func (o OAuth) GetDefaultRedirectURI() string {
	return o.MobileRedirectURI
}

func (o OAuth) GetAllowedRedirectSchemes() []string {
	return trimCSV(o.AllowedRedirectSchemes)
}

// GetStateSecret returns nil when no secret is configured.
func (o OAuth) GetStateSecret() []byte {
	if o.StateSecret == "" {
		return nil
	}
	return []byte(o.StateSecret)
}

func (o OAuth) GetStateMaxAgeSeconds() (int, error) {
	if o.StateMaxAge < 0 {
		return 0, fmt.Errorf("[config OAuth] STATE_MAX_AGE must not be negative: %s", o.StateMaxAge)
	}
	if o.StateMaxAge == 0 {
		return int(time.Hour.Seconds()), nil
	}
	return int(o.StateMaxAge.Seconds()), nil
}

func (o OAuth) GetProviderEndpoints() ProviderEndpoints {
	return ProviderEndpoints{
		AuthURL:     o.AuthURL,
		TokenURL:    o.TokenURL,
		UserInfoURL: o.UserInfoURL,
	}
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
