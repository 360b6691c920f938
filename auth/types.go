package auth

import "time"

// TokenPair is the result of an authorization-code exchange. It is handed to
// the caller and never stored.
type TokenPair struct {
	AccessToken string
	// RefreshToken is empty when Google chose not to issue one.
	RefreshToken string
	TokenType    string
	Scope        string
	IDToken      string
	Expiry       time.Time
}

// Identity is the signed-in user as reported by the userinfo endpoint.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// RefreshedToken is the outcome of a refresh grant. Google keeps the refresh
// token unchanged, so none is returned.
type RefreshedToken struct {
	AccessToken string
	Expiry      time.Time
}

// TokenResponse is the JSON shape of a TokenPair for web callers.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	// ExpiryDate is the expiry as Unix epoch milliseconds.
	ExpiryDate int64 `json:"expiry_date,omitempty"`
}

func (p *TokenPair) Response() TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		Scope:        p.Scope,
		IDToken:      p.IDToken,
		ExpiryDate:   ExpiryMillis(p.Expiry),
	}
}

// ExpiryMillis converts an expiry to epoch milliseconds; zero stays zero.
func ExpiryMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
