package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const (
	OpListEvents  = "calendar.events.list"
	OpCreateEvent = "calendar.events.insert"

	calendarBasePath = "https://www.googleapis.com/calendar/v3/"
	primaryCalendar  = "primary"
	eventsPageSize   = 10
)

// ListEvents returns the next upcoming events of the primary calendar,
// ordered by start time.
func (s *Session) ListEvents(ctx context.Context) (*calendar.Events, error) {
	svc, err := calendar.NewService(ctx, s.options(s.endpoints.Calendar)...)
	if err != nil {
		return nil, errors.Upstream(OpListEvents, err)
	}

	events, err := svc.Events.List(primaryCalendar).
		TimeMin(s.now().UTC().Format(time.RFC3339)).
		MaxResults(eventsPageSize).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Upstream(OpListEvents, err)
	}
	return events, nil
}

// CreateEvent inserts the caller's event JSON into the primary calendar
// unchanged and returns Google's representation of the created event. The body
// is posted as is so fields the typed client does not model still reach Google.
// An empty body is sent as an empty event.
func (s *Session) CreateEvent(ctx context.Context, event json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(event)) == 0 {
		event = json.RawMessage("{}")
	}
	if !json.Valid(event) {
		return nil, errors.Wrapf(errors.ErrInvalidParameter, "event body is not valid JSON")
	}

	base := s.endpoints.Calendar
	if base == "" {
		base = calendarBasePath
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		googleapi.ResolveRelative(base, "calendars/"+primaryCalendar+"/events"), bytes.NewReader(event))
	if err != nil {
		return nil, errors.Upstream(OpCreateEvent, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Upstream(OpCreateEvent, err)
	}
	defer googleapi.CloseBody(res)
	if err := googleapi.CheckResponse(res); err != nil {
		return nil, errors.Upstream(OpCreateEvent, err)
	}

	created, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Upstream(OpCreateEvent, err)
	}
	return created, nil
}
