package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"github.com/jrsteele09/go-google-gateway/workspace"
	"github.com/rs/zerolog/hlog"
)

const headerAccessToken = "access_token"

// sessionHandler performs exactly one upstream call with a request-scoped session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error

// Authenticated builds a fresh Google session from the caller's access token
// and hands it to h. Without a token it answers 401 and never builds a client.
func (s *Server) Authenticated(op, failure string, h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.workspace.NewSession(r.Context(), accessToken(r))
		if err != nil {
			writeFailure(w, r, op, "Missing access token", err)
			return
		}

		err = h(w, r, session)

		var ue *errors.UpstreamError
		if err == nil || errors.As(err, &ue) {
			s.metrics.ObserveUpstream(op, err)
		}
		if err != nil {
			writeFailure(w, r, op, failure, err)
		}
	}
}

// accessToken reads the caller's token from the access_token header, falling
// back to an Authorization bearer header.
func accessToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(headerAccessToken)); tok != "" {
		return tok
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// positiveInt parses an optional positive integer query parameter; zero means absent.
func positiveInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.Wrapf(errors.ErrInvalidParameter, "%s must be a positive integer", name)
	}
	return n, nil
}

func (s *Server) ListCalendarEventsHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpListEvents, "Failed to fetch calendar events",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			events, err := session.ListEvents(r.Context())
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, events)
			return nil
		})
}

// CreateCalendarEventHandler forwards the caller's event body unchanged.
func (s *Server) CreateCalendarEventHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpCreateEvent, "Failed to create calendar event",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidParameter, "event body: %s", err.Error())
			}

			created, err := session.CreateEvent(r.Context(), body)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, created)
			return nil
		})
}

func (s *Server) ListDriveFilesHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpListFiles, "Failed to fetch drive files",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			pageSize, err := positiveInt(r, "pageSize")
			if err != nil {
				return err
			}

			files, err := session.ListFiles(r.Context(), r.URL.Query().Get("query"), pageSize)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, files)
			return nil
		})
}

// DownloadDriveFileHandler streams the file's bytes with the upstream content type.
func (s *Server) DownloadDriveFileHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpDownloadFile, "Failed to download file",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			resp, err := session.DownloadFile(r.Context(), r.PathValue("fileId"))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			contentType := resp.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			w.Header().Set("Content-Type", contentType)
			if resp.ContentLength >= 0 {
				w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
			}
			w.WriteHeader(http.StatusOK)

			// Headers are gone; a broken stream can only be logged.
			if _, err := io.Copy(w, resp.Body); err != nil {
				hlog.FromRequest(r).Error().Str("op", workspace.OpDownloadFile).Err(err).Msg("file stream interrupted")
			}
			return nil
		})
}

func (s *Server) ListGmailMessagesHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpListMessages, "Failed to fetch emails",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			maxResults, err := positiveInt(r, "maxResults")
			if err != nil {
				return err
			}

			list, err := session.ListMessages(r.Context(), r.URL.Query().Get("query"), maxResults)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, list)
			return nil
		})
}

func (s *Server) SendGmailMessageHandler() http.HandlerFunc {
	return s.Authenticated(workspace.OpSendMessage, "Failed to send email",
		func(w http.ResponseWriter, r *http.Request, session *workspace.Session) error {
			var mail workspace.Mail
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&mail); err != nil && err != io.EOF {
				return errors.Wrapf(errors.ErrInvalidParameter, "message body: %s", err.Error())
			}

			sent, err := session.SendMessage(r.Context(), mail)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, sent)
			return nil
		})
}
