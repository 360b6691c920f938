package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"github.com/rs/zerolog/hlog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Status is the provider's HTTP status for upstream failures.
	Status int `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, statusCode int, errorMsg, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg, Message: message})
}

// writeFailure logs err against op and answers with the status its kind maps to.
// Upstream failures carry the provider's message verbatim; failure is the
// caller-facing summary, e.g. "Failed to send email".
func writeFailure(w http.ResponseWriter, r *http.Request, op, failure string, err error) {
	status := errors.HTTPStatus(err)
	resp := errorResponse{Error: failure, Message: err.Error()}

	var ue *errors.UpstreamError
	if errors.As(err, &ue) {
		resp.Message = ue.Message
		resp.Status = ue.Status
	}

	event := hlog.FromRequest(r).Error()
	if status < http.StatusInternalServerError {
		event = hlog.FromRequest(r).Warn()
		resp.Error = validationMessage(err)
	}
	event.Str("op", op).Int("status", status).Err(err).Msg(failure)

	writeJSON(w, status, resp)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, errors.ErrMissingAccessToken):
		return "Missing access token"
	case errors.Is(err, errors.ErrMissingRefreshToken):
		return "Missing refresh token"
	case errors.Is(err, errors.ErrMissingCode):
		return "Missing authorization code"
	case errors.Is(err, errors.ErrInvalidRedirectURI), errors.Is(err, errors.ErrRedirectNotAllowed):
		return "Invalid redirect_uri"
	default:
		return "Invalid request"
	}
}
