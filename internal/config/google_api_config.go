package config

import "strings"

type GoogleAPIConfig interface {
	GetAPIEndpoints() APIEndpoints
}

// APIEndpoints holds the base paths handed to the Google API clients.
// Empty values keep each client library's default.
type APIEndpoints struct {
	Calendar string
	Drive    string
	Gmail    string
}

type GoogleAPI struct {
	// BaseURL points all three APIs at one host, e.g. an emulator or a test server.
	BaseURL string `env:"GOOGLE_API_BASE_URL"`
}

var _ GoogleAPIConfig = GoogleAPI{}

func (g GoogleAPI) GetAPIEndpoints() APIEndpoints {
	if g.BaseURL == "" {
		return APIEndpoints{}
	}
	base := strings.TrimRight(g.BaseURL, "/")
	return APIEndpoints{
		Calendar: base + "/calendar/v3/",
		Drive:    base + "/drive/v3/",
		Gmail:    base + "/",
	}
}
