package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-google-gateway/auth"
	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"github.com/jrsteele09/go-google-gateway/state"
	"github.com/rs/zerolog/hlog"
)

const maxBodyBytes = 1 << 20

// IndexHandler is the liveness probe.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": s.config.GetAppName(),
			"version": s.config.GetVersion(),
		})
	}
}

// AuthURLHandler returns the Google consent URL. The caller's state and
// redirect target travel inside Google's state parameter.
func (s *Server) AuthURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		callerState := q.Get("state")
		if callerState == "" {
			callerState = state.DefaultCallerState
		}
		redirectURI := q.Get("redirect_uri")
		if redirectURI == "" {
			redirectURI = s.states.DefaultRedirectURI()
		}

		encoded, err := s.states.Encode(callerState, redirectURI)
		if err != nil {
			writeFailure(w, r, "state.encode", "Failed to encode state", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": s.auth.AuthCodeURL(encoded)})
	}
}

// callbackResponse is returned instead of a redirect when web=true.
type callbackResponse struct {
	Tokens      auth.TokenResponse `json:"tokens"`
	UserInfo    *auth.Identity     `json:"userInfo"`
	RedirectURL string             `json:"redirectUrl"`
}

// CallbackHandler completes the authorization: code exchange, then identity
// lookup with the new access token, then a redirect back to the caller.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errorParam := q.Get("error"); errorParam != "" {
			hlog.FromRequest(r).Warn().Str("provider_error", errorParam).Msg("authorization was not granted")
			writeJSONError(w, http.StatusBadRequest, "Authorization failed", errorParam+" "+q.Get("error_description"))
			return
		}

		code := q.Get("code")
		if code == "" {
			writeFailure(w, r, auth.OpExchange, "Missing authorization code", errors.ErrMissingCode)
			return
		}

		target := s.resolveState(r, q.Get("state"))

		pair, err := s.auth.Exchange(r.Context(), code)
		s.metrics.ObserveUpstream(auth.OpExchange, err)
		if err != nil {
			writeFailure(w, r, auth.OpExchange, "Failed to exchange authorization code", err)
			return
		}

		identity, err := s.auth.FetchIdentity(r.Context(), pair)
		s.metrics.ObserveUpstream(auth.OpIdentity, err)
		if err != nil {
			writeFailure(w, r, auth.OpIdentity, "Failed to fetch user info", err)
			return
		}

		redirectURL, err := callbackRedirectURL(target, pair, identity)
		if err != nil {
			writeFailure(w, r, "callback.redirect", "Invalid redirect_uri", err)
			return
		}

		if q.Get("web") == "true" {
			writeJSON(w, http.StatusOK, callbackResponse{
				Tokens:      pair.Response(),
				UserInfo:    identity,
				RedirectURL: redirectURL,
			})
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// resolveState recovers the caller's state and redirect target. A value that
// does not decode is kept as the caller's state and the default redirect is used.
func (s *Server) resolveState(r *http.Request, raw string) state.Request {
	if raw == "" {
		return state.Request{State: state.DefaultCallerState, RedirectURI: s.states.DefaultRedirectURI()}
	}
	target, err := s.states.Resolve(raw)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("state fell back to defaults")
	}
	if target.State == "" {
		target.State = state.DefaultCallerState
	}
	return target
}

// callbackRedirectURL appends the tokens and identity to the caller's redirect target.
func callbackRedirectURL(target state.Request, pair *auth.TokenPair, identity *auth.Identity) (string, error) {
	u, err := url.Parse(target.RedirectURI)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidRedirectURI, "parse")
	}

	expiresIn := ""
	if ms := auth.ExpiryMillis(pair.Expiry); ms != 0 {
		expiresIn = strconv.FormatInt(ms, 10)
	}

	q := u.Query()
	q.Set("access_token", pair.AccessToken)
	q.Set("refresh_token", pair.RefreshToken)
	q.Set("expires_in", expiresIn)
	q.Set("email", identity.Email)
	q.Set("name", identity.Name)
	q.Set("picture", identity.Picture)
	q.Set("state", target.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresIn is the expiry as Unix epoch milliseconds.
	ExpiresIn int64 `json:"expires_in"`
}

// RefreshHandler mints a new access token from the refresh token in the JSON body.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		// An empty or malformed body is treated as a missing refresh token.
		_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

		if req.RefreshToken == "" {
			writeFailure(w, r, auth.OpRefresh, "Missing refresh token", errors.ErrMissingRefreshToken)
			return
		}

		tok, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		s.metrics.ObserveUpstream(auth.OpRefresh, err)
		if err != nil {
			writeFailure(w, r, auth.OpRefresh, "Failed to refresh token", err)
			return
		}

		writeJSON(w, http.StatusOK, refreshResponse{
			AccessToken: tok.AccessToken,
			ExpiresIn:   auth.ExpiryMillis(tok.Expiry),
		})
	}
}
