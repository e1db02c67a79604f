package google

import (
	"encoding/json"
	"fmt"

	"google.golang.org/api/calendar/v3"

	"gdata/internal/models"
)

const (
	calendarsPath = "/calendar/v3/calendars"

	kindCalendar          = "calendar#calendar"
	kindCalendars         = "calendar#calendars"
	kindCalendarList      = "calendar#calendarList"
	kindCalendarListEntry = "calendar#calendarListEntry"
)

// kindEnvelope is decoded first to pick the shape of a JSON document.
type kindEnvelope struct {
	Kind string `json:"kind"`
}

func peekKind(body []byte) (string, error) {
	var env kindEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to parse json: %w", err)
	}
	return env.Kind, nil
}

// encodeCalendar renders c with its kind and the present fields only.
func encodeCalendar(c *models.Calendar) ([]byte, error) {
	return json.Marshal(&calendar.Calendar{
		Kind:        kindCalendar,
		Etag:        c.ETag,
		Id:          c.ID,
		Summary:     c.Summary,
		Description: c.Description,
		TimeZone:    c.TimeZone,
	})
}

// calendarPage is one decoded calendars document.
type calendarPage struct {
	calendars     []*models.Calendar
	single        bool
	nextPageToken string
}

func decodeCalendars(body []byte) (*calendarPage, error) {
	kind, err := peekKind(body)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindCalendar:
		var cal calendar.Calendar
		if err := json.Unmarshal(body, &cal); err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		return &calendarPage{
			calendars: []*models.Calendar{{
				ID:          cal.Id,
				ETag:        cal.Etag,
				Summary:     cal.Summary,
				Description: cal.Description,
				TimeZone:    cal.TimeZone,
			}},
			single: true,
		}, nil
	case kindCalendarListEntry:
		var entry calendar.CalendarListEntry
		if err := json.Unmarshal(body, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode calendar list entry: %w", err)
		}
		return &calendarPage{calendars: []*models.Calendar{calendarFromListEntry(&entry)}, single: true}, nil
	case kindCalendarList, kindCalendars:
		var list calendar.CalendarList
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("failed to decode calendar list: %w", err)
		}
		page := &calendarPage{
			calendars:     make([]*models.Calendar, 0, len(list.Items)),
			nextPageToken: list.NextPageToken,
		}
		for _, item := range list.Items {
			if item == nil {
				continue
			}
			page.calendars = append(page.calendars, calendarFromListEntry(item))
		}
		return page, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a calendar document", ErrUnknownKind, kind)
	}
}

func calendarFromListEntry(e *calendar.CalendarListEntry) *models.Calendar {
	return &models.Calendar{
		ID:          e.Id,
		ETag:        e.Etag,
		Summary:     e.Summary,
		Description: e.Description,
		TimeZone:    e.TimeZone,
	}
}

func (c *Client) bindCalendar(v *models.Calendar) *binding {
	path := calendarsPath
	if !v.IsNew() {
		path += "/" + idSegment(v.ID)
	}
	return &binding{
		endpoint: &c.calendars,
		path:     path,
		isNew:    v.IsNew(),
		etag:     v.ETag,
		encode:   func() ([]byte, error) { return encodeCalendar(v) },
		decode: func(body []byte) error {
			page, err := decodeCalendars(body)
			if err != nil {
				return err
			}
			if !page.single {
				return fmt.Errorf("%w: expected a single calendar, got a list", ErrUnknownKind)
			}
			*v = *page.calendars[0]
			return nil
		},
	}
}
