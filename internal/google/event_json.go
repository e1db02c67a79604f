package google

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"gdata/internal/models"
)

const (
	kindEvent  = "calendar#event"
	kindEvents = "calendar#events"

	dateLayout = "2006-01-02"
)

func eventsPath(calendarID string) string {
	return calendarsPath + "/" + idSegment(calendarID) + "/events"
}

func toEventDateTime(t models.EventTime) *calendar.EventDateTime {
	if t.IsZero() {
		return nil
	}
	dt := &calendar.EventDateTime{TimeZone: t.TimeZone}
	if t.AllDay {
		dt.Date = t.Time.Format(dateLayout)
	} else {
		dt.DateTime = t.Time.Format(time.RFC3339)
	}
	return dt
}

func fromEventDateTime(dt *calendar.EventDateTime) (models.EventTime, error) {
	if dt == nil {
		return models.EventTime{}, nil
	}
	switch {
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return models.EventTime{}, fmt.Errorf("invalid dateTime %q: %w", dt.DateTime, err)
		}
		return models.EventTime{Time: t, TimeZone: dt.TimeZone}, nil
	case dt.Date != "":
		t, err := time.Parse(dateLayout, dt.Date)
		if err != nil {
			return models.EventTime{}, fmt.Errorf("invalid date %q: %w", dt.Date, err)
		}
		return models.EventTime{Time: t, AllDay: true, TimeZone: dt.TimeZone}, nil
	default:
		return models.EventTime{TimeZone: dt.TimeZone}, nil
	}
}

// encodeEvent renders e with its kind and the present fields only.
func encodeEvent(e *models.Event) ([]byte, error) {
	return json.Marshal(&calendar.Event{
		Kind:        kindEvent,
		Etag:        e.ETag,
		Id:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Visibility:  e.Visibility,
		Status:      e.Status,
		Start:       toEventDateTime(e.Start),
		End:         toEventDateTime(e.End),
	})
}

func eventFromAPI(item *calendar.Event, calendarID string) (*models.Event, error) {
	start, err := fromEventDateTime(item.Start)
	if err != nil {
		return nil, err
	}
	end, err := fromEventDateTime(item.End)
	if err != nil {
		return nil, err
	}
	return &models.Event{
		ID:          item.Id,
		ETag:        item.Etag,
		CalendarID:  calendarID,
		Summary:     item.Summary,
		Description: item.Description,
		Visibility:  item.Visibility,
		Status:      item.Status,
		Start:       start,
		End:         end,
	}, nil
}

// eventPage is one decoded events document. Decoded events belong to the
// calendar the request was made for.
type eventPage struct {
	events        []*models.Event
	single        bool
	nextPageToken string
}

func decodeEvents(body []byte, calendarID string) (*eventPage, error) {
	kind, err := peekKind(body)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindEvent:
		var item calendar.Event
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		ev, err := eventFromAPI(&item, calendarID)
		if err != nil {
			return nil, err
		}
		return &eventPage{events: []*models.Event{ev}, single: true}, nil
	case kindEvents:
		var list calendar.Events
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("failed to decode events: %w", err)
		}
		page := &eventPage{
			events:        make([]*models.Event, 0, len(list.Items)),
			nextPageToken: list.NextPageToken,
		}
		for _, item := range list.Items {
			if item == nil {
				continue
			}
			ev, err := eventFromAPI(item, calendarID)
			if err != nil {
				return nil, err
			}
			page.events = append(page.events, ev)
		}
		return page, nil
	default:
		return nil, fmt.Errorf("%w: %q is not an event document", ErrUnknownKind, kind)
	}
}

func (c *Client) bindEvent(v *models.Event) (*binding, error) {
	if v.CalendarID == "" {
		return nil, ErrNoCalendar
	}
	path := eventsPath(v.CalendarID)
	if !v.IsNew() {
		path += "/" + idSegment(v.ID)
	}
	return &binding{
		endpoint: &c.events,
		path:     path,
		isNew:    v.IsNew(),
		etag:     v.ETag,
		encode:   func() ([]byte, error) { return encodeEvent(v) },
		decode: func(body []byte) error {
			page, err := decodeEvents(body, v.CalendarID)
			if err != nil {
				return err
			}
			if !page.single {
				return fmt.Errorf("%w: expected a single event, got a list", ErrUnknownKind)
			}
			*v = *page.events[0]
			return nil
		},
	}, nil
}
