package models

import "time"

// DefaultVisibility is assigned to events built with NewEvent.
const DefaultVisibility = "private"

// EventTime is the start or end of an event. AllDay events carry only a date on
// the wire; TimeZone is optional and independent for start and end.
type EventTime struct {
	Time     time.Time
	AllDay   bool
	TimeZone string
}

// IsZero reports whether the time is absent.
func (t EventTime) IsZero() bool {
	return t.Time.IsZero()
}

// Event represents a calendar event.
type Event struct {
	ID          string
	ETag        string
	CalendarID  string // Remote id of the owning calendar, copied at construction
	Summary     string
	Description string
	Visibility  string
	Status      string
	Start       EventTime
	End         EventTime
}

// NewEvent returns a new event belonging to cal. A nil calendar leaves the
// event without an owner, which is only useful in tests.
func NewEvent(cal *Calendar) *Event {
	e := &Event{Visibility: DefaultVisibility}
	if cal != nil {
		e.CalendarID = cal.ID
	}
	return e
}

// IsNew reports whether the event has no remote id.
func (e *Event) IsNew() bool {
	return e.ID == ""
}
