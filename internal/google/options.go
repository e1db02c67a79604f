package google

import (
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultContactsBaseURL = "https://www.google.com"
	DefaultCalendarBaseURL = "https://www.googleapis.com"
)

// Config configures a Client. Zero values select the defaults.
type Config struct {
	// Logger receives debug and info records. Nil discards them.
	Logger *slog.Logger
	// Transport sends requests. Nil uses an HTTPTransport with TLS
	// verification enabled.
	Transport Transport
	// ContactsBaseURL is the host of the Atom feeds.
	ContactsBaseURL string
	// CalendarBaseURL is the host of the Calendar and tokeninfo APIs.
	CalendarBaseURL string
	// Now is the clock used to compute token expiry.
	Now func() time.Time
}

// FeedOptions filters the contacts and groups feeds. Paging parameters are
// managed by the client.
type FeedOptions struct {
	Query       string    // q
	UpdatedMin  time.Time // updated-min
	OrderBy     string    // orderby, e.g. "lastmodified"
	SortOrder   string    // sortorder, "ascending" or "descending"
	ShowDeleted bool      // showdeleted
	Group       string    // group, a group remote id
}

func (o *FeedOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if !o.UpdatedMin.IsZero() {
		v.Set("updated-min", o.UpdatedMin.UTC().Format(time.RFC3339))
	}
	if o.OrderBy != "" {
		v.Set("orderby", o.OrderBy)
	}
	if o.SortOrder != "" {
		v.Set("sortorder", o.SortOrder)
	}
	if o.ShowDeleted {
		v.Set("showdeleted", "true")
	}
	if o.Group != "" {
		v.Set("group", o.Group)
	}
	return v
}

// EventListOptions filters an events listing.
type EventListOptions struct {
	TimeMin      time.Time // timeMin
	TimeMax      time.Time // timeMax
	UpdatedMin   time.Time // updatedMin
	Query        string    // q
	SingleEvents bool      // singleEvents, expands recurring events
	OrderBy      string    // orderBy, "startTime" requires SingleEvents
	ShowDeleted  bool      // showDeleted
}

func (o *EventListOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if !o.TimeMin.IsZero() {
		v.Set("timeMin", o.TimeMin.Format(time.RFC3339))
	}
	if !o.TimeMax.IsZero() {
		v.Set("timeMax", o.TimeMax.Format(time.RFC3339))
	}
	if !o.UpdatedMin.IsZero() {
		v.Set("updatedMin", o.UpdatedMin.Format(time.RFC3339))
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.SingleEvents {
		v.Set("singleEvents", strconv.FormatBool(true))
	}
	if o.OrderBy != "" {
		v.Set("orderBy", o.OrderBy)
	}
	if o.ShowDeleted {
		v.Set("showDeleted", strconv.FormatBool(true))
	}
	return v
}

// CalendarListOptions filters a calendars listing.
type CalendarListOptions struct {
	MinAccessRole string // minAccessRole, e.g. "owner"
	ShowHidden    bool   // showHidden
	ShowDeleted   bool   // showDeleted
}

func (o *CalendarListOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.MinAccessRole != "" {
		v.Set("minAccessRole", o.MinAccessRole)
	}
	if o.ShowHidden {
		v.Set("showHidden", strconv.FormatBool(true))
	}
	if o.ShowDeleted {
		v.Set("showDeleted", strconv.FormatBool(true))
	}
	return v
}
