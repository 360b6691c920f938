package workspace

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"google.golang.org/api/gmail/v1"
)

const (
	OpListMessages = "gmail.messages.list"
	OpSendMessage  = "gmail.messages.send"

	DefaultMessagesPageSize = 10

	me = "me"
)

// Mail is the minimal message the gateway can send.
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate rejects header values that would inject extra headers.
func (m Mail) Validate() error {
	if strings.ContainsAny(m.To, "\r\n") {
		return errors.Wrapf(errors.ErrInvalidParameter, "to contains a line break")
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.Wrapf(errors.ErrInvalidParameter, "subject contains a line break")
	}
	return nil
}

// Raw renders the message and encodes it the way the Gmail API expects:
// base64url without padding.
func (m Mail) Raw() string {
	return ComposeRawMessage(m.To, m.Subject, m.Body)
}

func ComposeRawMessage(to, subject, body string) string {
	msg := strings.Join([]string{
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\n")
	return base64.RawURLEncoding.EncodeToString([]byte(msg))
}

// ListMessages lists message ids in the caller's mailbox, optionally filtered by a Gmail search query.
func (s *Session) ListMessages(ctx context.Context, query string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	if maxResults <= 0 {
		maxResults = DefaultMessagesPageSize
	}

	svc, err := gmail.NewService(ctx, s.options(s.endpoints.Gmail)...)
	if err != nil {
		return nil, errors.Upstream(OpListMessages, err)
	}

	call := svc.Users.Messages.List(me).MaxResults(maxResults)
	if query != "" {
		call = call.Q(query)
	}
	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, errors.Upstream(OpListMessages, err)
	}
	return list, nil
}

// SendMessage sends m from the caller's account.
func (s *Session) SendMessage(ctx context.Context, m Mail) (*gmail.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, s.options(s.endpoints.Gmail)...)
	if err != nil {
		return nil, errors.Upstream(OpSendMessage, err)
	}

	sent, err := svc.Users.Messages.Send(me, &gmail.Message{Raw: m.Raw()}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Upstream(OpSendMessage, err)
	}
	return sent, nil
}
