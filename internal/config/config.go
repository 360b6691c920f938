package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	GoogleAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetVersion() string
	GetEnv() string
	GetLogLevel() string
	GetLogFormat() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

// Settings is assembled once at startup and is read-only afterwards.
type Settings struct {
	EnvVars
	Cors
	OAuth
	GoogleAPI
}

var _ Config = (*Settings)(nil)

// Load reads the optional dotenv files and then parses the process environment.
// Missing dotenv files are ignored; variables already set in the environment win.
func Load(envFiles ...string) (*Settings, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("[config Load] parse env: %w", err)
	}
	return &s, nil
}

// Validate reports configuration that would make the server unusable.
func (s *Settings) Validate() error {
	if s.ClientID == "" {
		return fmt.Errorf("[config Validate] %s is required", clientIDEnvVar)
	}
	if s.ClientSecret == "" {
		return fmt.Errorf("[config Validate] %s is required", clientSecretEnvVar)
	}
	if _, err := s.GetStateMaxAgeSeconds(); err != nil {
		return err
	}
	return nil
}
