package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-google-gateway/auth"
	"github.com/jrsteele09/go-google-gateway/internal/config"
	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGoogle stands in for Google's token and userinfo endpoints.
type fakeGoogle struct {
	*httptest.Server
	tokenCalls    atomic.Int32
	userInfoCalls atomic.Int32
	lastForm      url.Values
	lastAuth      string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_ = r.ParseForm()
		f.lastForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")

		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Malformed auth code."}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3599,"token_type":"Bearer","scope":"openid email","id_token":"header.payload.sig"}`))
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != "rt-1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at-2","expires_in":3599,"token_type":"Bearer"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.userInfoCalls.Add(1)
		f.lastAuth = r.Header.Get("Authorization")
		if f.lastAuth != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            "1234567890",
			"email":          "ada@example.com",
			"email_verified": true,
			"name":           "Ada Lovelace",
			"picture":        "https://example.com/ada.png",
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGoogle) config() config.OAuth {
	return config.OAuth{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BackendURL:   "https://gateway.example.com",
		AuthURL:      f.URL + "/auth",
		TokenURL:     f.URL + "/token",
		UserInfoURL:  f.URL + "/userinfo",
	}
}

func TestClient_AuthCodeURL(t *testing.T) {
	c := auth.NewClient(context.Background(), config.OAuth{
		ClientID:   "client-id",
		BackendURL: "https://gateway.example.com",
	})

	for _, st := range []string{"", "abc", "a b&c=d", strings.Repeat("x", 500)} {
		raw := c.AuthCodeURL(st, "openid", "email", "openid", "https://www.googleapis.com/auth/drive", "email")
		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()

		assert.Equal(t, "accounts.google.com", u.Host)
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Equal(t, "consent", q.Get("prompt"))
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "client-id", q.Get("client_id"))
		assert.Equal(t, "https://gateway.example.com/auth/google/callback", q.Get("redirect_uri"))
		assert.Equal(t, st, q.Get("state"))
		assert.Equal(t, []string{"openid", "email", "https://www.googleapis.com/auth/drive"}, strings.Fields(q.Get("scope")))
	}
}

func TestClient_AuthCodeURL_DefaultScopes(t *testing.T) {
	c := auth.NewClient(context.Background(), config.OAuth{ClientID: "client-id"})

	u, err := url.Parse(c.AuthCodeURL("abc"))
	require.NoError(t, err)

	scopes := strings.Fields(u.Query().Get("scope"))
	assert.Equal(t, config.DefaultScopes, scopes)
}

func TestClient_Exchange(t *testing.T) {
	fake := newFakeGoogle(t)
	c := auth.NewClient(context.Background(), fake.config())

	t.Run("success", func(t *testing.T) {
		pair, err := c.Exchange(context.Background(), "good-code")
		require.NoError(t, err)

		assert.Equal(t, "at-1", pair.AccessToken)
		assert.Equal(t, "rt-1", pair.RefreshToken)
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.Equal(t, "openid email", pair.Scope)
		assert.Equal(t, "header.payload.sig", pair.IDToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), pair.Expiry, time.Minute)

		assert.Equal(t, "https://gateway.example.com/auth/google/callback", fake.lastForm.Get("redirect_uri"))
		assert.Equal(t, "client-id", fake.lastForm.Get("client_id"))
	})

	t.Run("rejected code surfaces the provider message", func(t *testing.T) {
		_, err := c.Exchange(context.Background(), "used-code")
		require.Error(t, err)

		var ue *errors.UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, auth.OpExchange, ue.Op)
		assert.Equal(t, http.StatusBadRequest, ue.Status)
		assert.Equal(t, "Malformed auth code.", ue.Message)
	})

	t.Run("missing code makes no call", func(t *testing.T) {
		before := fake.tokenCalls.Load()
		_, err := c.Exchange(context.Background(), "")
		require.ErrorIs(t, err, errors.ErrMissingCode)
		assert.Equal(t, before, fake.tokenCalls.Load())
	})
}

func TestClient_FetchIdentity(t *testing.T) {
	fake := newFakeGoogle(t)
	c := auth.NewClient(context.Background(), fake.config(), auth.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))

	pair, err := c.Exchange(context.Background(), "good-code")
	require.NoError(t, err)

	id, err := c.FetchIdentity(context.Background(), pair)
	require.NoError(t, err)
	assert.Equal(t, &auth.Identity{
		Subject: "1234567890",
		Email:   "ada@example.com",
		Name:    "Ada Lovelace",
		Picture: "https://example.com/ada.png",
	}, id)
	assert.Equal(t, "Bearer at-1", fake.lastAuth)

	t.Run("rejected token", func(t *testing.T) {
		_, err := c.FetchIdentity(context.Background(), &auth.TokenPair{AccessToken: "stale"})
		var ue *errors.UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, auth.OpIdentity, ue.Op)
		assert.Contains(t, ue.Message, "401")
	})

	t.Run("no token makes no call", func(t *testing.T) {
		before := fake.userInfoCalls.Load()
		_, err := c.FetchIdentity(context.Background(), &auth.TokenPair{})
		require.ErrorIs(t, err, errors.ErrMissingAccessToken)
		assert.Equal(t, before, fake.userInfoCalls.Load())
	})
}

func TestClient_Refresh(t *testing.T) {
	fake := newFakeGoogle(t)
	c := auth.NewClient(context.Background(), fake.config())

	t.Run("success", func(t *testing.T) {
		tok, err := c.Refresh(context.Background(), "rt-1")
		require.NoError(t, err)
		assert.Equal(t, "at-2", tok.AccessToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)
		assert.Equal(t, "refresh_token", fake.lastForm.Get("grant_type"))
	})

	t.Run("revoked", func(t *testing.T) {
		_, err := c.Refresh(context.Background(), "revoked")
		var ue *errors.UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, auth.OpRefresh, ue.Op)
		assert.Equal(t, "Token has been expired or revoked.", ue.Message)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := c.Refresh(context.Background(), "")
		require.ErrorIs(t, err, errors.ErrMissingRefreshToken)
	})
}

func TestTokenPair_Response(t *testing.T) {
	expiry := time.UnixMilli(1734567890123)
	pair := &auth.TokenPair{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry}

	resp := pair.Response()
	assert.Equal(t, int64(1734567890123), resp.ExpiryDate)
	assert.Equal(t, "rt", resp.RefreshToken)
	assert.Equal(t, int64(0), auth.ExpiryMillis(time.Time{}))
}
