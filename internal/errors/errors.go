package errors

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Validation errors: the request is rejected before any upstream call.
var (
	ErrMissingCode         = errors.New("missing authorization code")
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrMissingAccessToken  = errors.New("missing access token")
	ErrInvalidRedirectURI  = errors.New("invalid redirect URI")
	ErrRedirectNotAllowed  = errors.New("redirect URI scheme not allowed")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// ErrDecodeFailure marks an opaque state value that could not be decoded.
// It is absorbed by the state fallback policy and never reaches the caller.
var ErrDecodeFailure = errors.New("state decode failure")

// UpstreamError is returned when Google rejected or failed a call.
type UpstreamError struct {
	Op      string // operation name, e.g. "calendar.events.list"
	Status  int    // provider HTTP status, 0 when unknown
	Message string // provider diagnostic, verbatim
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError, extracting the provider status and
// message from oauth2 and Google API errors. A nil err yields nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}

	var existing *UpstreamError
	if errors.As(err, &existing) {
		return existing
	}

	ue := &UpstreamError{Op: op, Message: err.Error(), Err: err}

	var retrieveErr *oauth2.RetrieveError
	var apiErr *googleapi.Error
	switch {
	case errors.As(err, &retrieveErr):
		if retrieveErr.Response != nil {
			ue.Status = retrieveErr.Response.StatusCode
		}
		switch {
		case retrieveErr.ErrorDescription != "":
			ue.Message = retrieveErr.ErrorDescription
		case retrieveErr.ErrorCode != "":
			ue.Message = retrieveErr.ErrorCode
		}
	case errors.As(err, &apiErr):
		ue.Status = apiErr.Code
		if apiErr.Message != "" {
			ue.Message = apiErr.Message
		}
	}
	return ue
}

// HTTPStatus maps an error to the status code the gateway answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingAccessToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMissingCode),
		errors.Is(err, ErrMissingRefreshToken),
		errors.Is(err, ErrInvalidRedirectURI),
		errors.Is(err, ErrRedirectNotAllowed),
		errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
