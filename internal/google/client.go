// Package google is a client for the Google Contacts Atom feeds and the
// Calendar JSON API. Contacts and groups travel as Atom XML and are paged by
// offset; calendars and events travel as JSON and are paged by continuation
// token.
//
// A Client is meant for a single caller. It issues requests one at a time and
// has no retry, caching or rate limiting.
package google

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"gdata/internal/models"
)

// Client provides access to the contacts, groups, calendars, events and
// tokeninfo endpoints with a single bearer token.
type Client struct {
	token     string
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
	listeners map[string][]RequestListener

	contacts  endpoint
	groups    endpoint
	calendars endpoint
	events    endpoint
	tokens    endpoint
}

// NewClient creates a client that authenticates every request with token.
func NewClient(token string, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(TransportConfig{})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	contactsURL := cfg.ContactsBaseURL
	if contactsURL == "" {
		contactsURL = DefaultContactsBaseURL
	}
	calendarURL := cfg.CalendarBaseURL
	if calendarURL == "" {
		calendarURL = DefaultCalendarBaseURL
	}

	return &Client{
		token:     token,
		transport: transport,
		logger:    logger,
		now:       now,
		listeners: make(map[string][]RequestListener),

		// Atom entries are replaced whole with PUT, unlike the JSON resources
		// which are patched.
		contacts:  endpoint{name: "contact", format: FormatXML, baseURL: contactsURL, header: atomHeaders(), updateMethod: http.MethodPut},
		groups:    endpoint{name: "group", format: FormatXML, baseURL: contactsURL, header: atomHeaders(), updateMethod: http.MethodPut},
		calendars: endpoint{name: "calendar", format: FormatJSON, baseURL: calendarURL, header: jsonHeaders(), updateMethod: http.MethodPatch},
		events:    endpoint{name: "event", format: FormatJSON, baseURL: calendarURL, header: jsonHeaders(), updateMethod: http.MethodPatch},
		tokens:    endpoint{name: "token", format: FormatJSON, baseURL: calendarURL, header: http.Header{}},
	}
}

// Fetch reloads a persisted entity from the server in place.
func (c *Client) Fetch(ctx context.Context, e models.Entity) error {
	b, err := c.bind(e)
	if err != nil {
		return err
	}
	if b.isNew {
		return fmt.Errorf("%w: cannot fetch a %s that was never saved", ErrUnsupportedOperation, b.endpoint.name)
	}

	body, err := c.get(ctx, b.endpoint, b.path, b.query)
	if err != nil {
		return err
	}
	return b.decode(body)
}

// Create posts the entity and updates it in place with the server's copy,
// which carries the remote id and etag.
func (c *Client) Create(ctx context.Context, e models.Entity) error {
	b, err := c.bind(e)
	if err != nil {
		return err
	}
	if b.readOnly {
		return fmt.Errorf("%w: cannot create a %s", ErrUnsupportedOperation, b.endpoint.name)
	}

	body, err := b.encode()
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, b.endpoint, b.path, b.query, body, nil)
	if err != nil {
		return err
	}
	if err := expect(resp, b.endpoint, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}
	return b.decode(resp.Body)
}

// Update sends the entity with its etag and updates it in place with the
// server's copy. A stale etag makes the server reject the write.
func (c *Client) Update(ctx context.Context, e models.Entity) error {
	b, err := c.bind(e)
	if err != nil {
		return err
	}
	if b.readOnly {
		return fmt.Errorf("%w: cannot update a %s", ErrUnsupportedOperation, b.endpoint.name)
	}
	if b.isNew {
		return fmt.Errorf("%w: cannot update a %s that was never saved", ErrUnsupportedOperation, b.endpoint.name)
	}

	body, err := b.encode()
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, b.endpoint.updateMethod, b.endpoint, b.path, b.query, body, ifMatch(b.etag))
	if err != nil {
		return err
	}
	if err := expect(resp, b.endpoint, http.StatusOK); err != nil {
		return err
	}
	return b.decode(resp.Body)
}

// Save creates new entities and updates persisted ones.
func (c *Client) Save(ctx context.Context, e models.Entity) error {
	if e.IsNew() {
		return c.Create(ctx, e)
	}
	return c.Update(ctx, e)
}

// Delete removes the entity remotely and returns the response status as is.
// The in-memory entity is left untouched.
func (c *Client) Delete(ctx context.Context, e models.Entity) (int, error) {
	b, err := c.bind(e)
	if err != nil {
		return 0, err
	}
	if b.readOnly || b.isNew {
		return 0, fmt.Errorf("%w: cannot delete this %s", ErrUnsupportedOperation, b.endpoint.name)
	}

	resp, err := c.send(ctx, http.MethodDelete, b.endpoint, b.path, b.query, nil, ifMatch(b.etag))
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// Contacts returns every contact of the feed, in feed order.
func (c *Client) Contacts(ctx context.Context, opts *FeedOptions) ([]*models.Contact, error) {
	base := opts.values()
	contacts, err := walkOffset(ctx, c.logger, func(ctx context.Context, startIndex, maxResults int) ([]*models.Contact, error) {
		body, err := c.get(ctx, &c.contacts, contactsFeedPath, offsetParams(base, startIndex, maxResults))
		if err != nil {
			return nil, err
		}
		page, _, err := decodeContacts(body)
		return page, err
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched contacts", "count", len(contacts))
	return contacts, nil
}

// Groups returns every contact group of the feed, in feed order.
func (c *Client) Groups(ctx context.Context, opts *FeedOptions) ([]*models.Group, error) {
	base := opts.values()
	groups, err := walkOffset(ctx, c.logger, func(ctx context.Context, startIndex, maxResults int) ([]*models.Group, error) {
		body, err := c.get(ctx, &c.groups, groupsFeedPath, offsetParams(base, startIndex, maxResults))
		if err != nil {
			return nil, err
		}
		page, _, err := decodeGroups(body)
		return page, err
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched groups", "count", len(groups))
	return groups, nil
}

// Calendars returns every calendar of the account.
func (c *Client) Calendars(ctx context.Context, opts *CalendarListOptions) ([]*models.Calendar, error) {
	base := opts.values()
	calendars, err := walkCursor(ctx, c.logger, func(ctx context.Context, pageToken string) ([]*models.Calendar, string, error) {
		body, err := c.get(ctx, &c.calendars, calendarsPath, cursorParams(base, pageToken))
		if err != nil {
			return nil, "", err
		}
		page, err := decodeCalendars(body)
		if err != nil {
			return nil, "", err
		}
		return page.calendars, page.nextPageToken, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched calendars", "count", len(calendars))
	return calendars, nil
}

// Events returns every event of cal, in server order. The events reference
// cal by id only.
func (c *Client) Events(ctx context.Context, cal *models.Calendar, opts *EventListOptions) ([]*models.Event, error) {
	if cal == nil || cal.IsNew() {
		return nil, ErrNoCalendar
	}
	calendarID := cal.ID
	path := eventsPath(calendarID)
	base := opts.values()

	events, err := walkCursor(ctx, c.logger, func(ctx context.Context, pageToken string) ([]*models.Event, string, error) {
		body, err := c.get(ctx, &c.events, path, cursorParams(base, pageToken))
		if err != nil {
			return nil, "", err
		}
		page, err := decodeEvents(body, calendarID)
		if err != nil {
			return nil, "", err
		}
		return page.events, page.nextPageToken, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched events", "count", len(events), "calendarID", calendarID)
	return events, nil
}

// TokenInfo describes the client's own token. It returns nil without an
// error when the server rejects the token, so callers can tell an invalid
// token apart from a failed request.
func (c *Client) TokenInfo(ctx context.Context) (*models.Token, error) {
	tok := models.NewToken(c.token)
	b := c.bindToken(tok)

	resp, err := c.send(ctx, http.MethodGet, b.endpoint, b.path, b.query, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Info("Token rejected", "status", resp.StatusCode)
		return nil, nil
	}
	if err := expect(resp, b.endpoint, http.StatusOK); err != nil {
		return nil, err
	}
	if err := b.decode(resp.Body); err != nil {
		return nil, err
	}
	return tok, nil
}

// TestAccess probes the contacts feed with a one-entry page. It returns false
// for 401 and an *APIError for any other unsuccessful status.
func (c *Client) TestAccess(ctx context.Context) (bool, error) {
	query := url.Values{"max-results": {"1"}}
	resp, err := c.send(ctx, http.MethodGet, &c.contacts, contactsFeedPath, query, nil, nil)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
}
