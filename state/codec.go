// Package state carries the caller's own state token and its post-auth
// redirect target through Google's single opaque "state" parameter.
package state

import (
	"net/url"

	"github.com/gorilla/securecookie"
	"github.com/jrsteele09/go-google-gateway/internal/errors"
)

const (
	cookieName = "state"

	// DefaultCallerState is used when the caller supplied no state of its own.
	DefaultCallerState = "default"
)

// Request is the data smuggled through the provider redirect.
type Request struct {
	State       string `json:"s"`
	RedirectURI string `json:"r"`
}

// Codec encodes and decodes Requests. It is safe for concurrent use.
type Codec struct {
	sc                 *securecookie.SecureCookie
	defaultRedirectURI string
	allowedSchemes     map[string]struct{}
}

type Options struct {
	// HashKey authenticates encoded values. Required.
	HashKey []byte
	// MaxAge is how long an encoded value stays valid, in seconds. Zero disables the check.
	MaxAge int
	// DefaultRedirectURI is the fallback redirect target.
	DefaultRedirectURI string
	// AllowedSchemes restricts redirect targets. Empty allows every scheme.
	AllowedSchemes []string
}

func NewCodec(opts Options) *Codec {
	sc := securecookie.New(opts.HashKey, nil).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(opts.MaxAge).
		MaxLength(0)

	c := &Codec{
		sc:                 sc,
		defaultRedirectURI: opts.DefaultRedirectURI,
	}
	if len(opts.AllowedSchemes) > 0 {
		c.allowedSchemes = make(map[string]struct{}, len(opts.AllowedSchemes))
		for _, s := range opts.AllowedSchemes {
			c.allowedSchemes[s] = struct{}{}
		}
	}
	return c
}

// GenerateKey returns a random key for deployments without a configured secret.
// Values encoded with it do not survive a restart.
func GenerateKey() []byte {
	return securecookie.GenerateRandomKey(32)
}

func (c *Codec) DefaultRedirectURI() string {
	return c.defaultRedirectURI
}

// Encode packs callerState and redirectURI into a URL-safe opaque token.
func (c *Codec) Encode(callerState, redirectURI string) (string, error) {
	if err := c.CheckRedirect(redirectURI); err != nil {
		return "", err
	}

	token, err := c.sc.Encode(cookieName, Request{State: callerState, RedirectURI: redirectURI})
	if err != nil {
		return "", errors.Wrapf(err, "[state Encode] encode")
	}
	return token, nil
}

// Decode unpacks a token produced by Encode. Any failure is reported as
// errors.ErrDecodeFailure; Decode never panics on malformed input.
func (c *Codec) Decode(token string) (req Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			req, err = Request{}, errors.ErrDecodeFailure
		}
	}()

	if token == "" {
		return Request{}, errors.ErrDecodeFailure
	}
	if err := c.sc.Decode(cookieName, token, &req); err != nil {
		return Request{}, errors.Wrapf(errors.ErrDecodeFailure, "%s", err.Error())
	}
	if _, err := parseAbsolute(req.RedirectURI); err != nil {
		return Request{}, errors.Wrapf(errors.ErrDecodeFailure, "redirect: %s", err.Error())
	}
	return req, nil
}

// Resolve decodes token and applies the fallback policy: a token that does not
// decode is taken to be the caller's own state and the default redirect is used.
// A decoded redirect that the allow-list rejects is replaced by the default.
// The returned Request is always usable; the error only reports why a fallback
// was applied.
func (c *Codec) Resolve(token string) (Request, error) {
	req, err := c.Decode(token)
	if err != nil {
		return Request{State: token, RedirectURI: c.defaultRedirectURI}, err
	}
	if err := c.CheckRedirect(req.RedirectURI); err != nil {
		req.RedirectURI = c.defaultRedirectURI
		return req, err
	}
	return req, nil
}

// CheckRedirect reports whether redirectURI is an absolute URI with an allowed scheme.
func (c *Codec) CheckRedirect(redirectURI string) error {
	u, err := parseAbsolute(redirectURI)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRedirectURI, "%q", redirectURI)
	}
	if c.allowedSchemes == nil {
		return nil
	}
	if _, ok := c.allowedSchemes[u.Scheme]; !ok {
		return errors.Wrapf(errors.ErrRedirectNotAllowed, "%q", u.Scheme)
	}
	return nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errors.ErrInvalidRedirectURI
	}
	return u, nil
}
