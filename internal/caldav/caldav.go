// Package caldav writes Google events into a calendar on any CalDAV server.
package caldav

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/emersion/go-webdav/caldav"

	"gdata/internal/export"
	"gdata/internal/models"
)

// ErrCalendarNotFound is returned when no calendar has the configured name.
var ErrCalendarNotFound = errors.New("calendar not found")

// Config describes how to reach the target calendar.
type Config struct {
	Endpoint           string // e.g. https://caldav.icloud.com/
	Username           string
	Password           string
	CalendarName       string // Display name of the target calendar
	InsecureSkipVerify bool
}

// basicAuthTransport adds Basic Auth and the User-Agent to requests.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "gdata/1.0")
	return t.Transport.RoundTrip(req)
}

// Client writes events into one calendar collection.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	calendarPath string
	now          func() time.Time
}

// NewClient connects to the server and locates the calendar named in cfg.
func NewClient(ctx context.Context, logger *slog.Logger, cfg Config) (*Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			Username:  cfg.Username,
			Password:  cfg.Password,
			Transport: base,
		},
	}

	caldavClient, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		logger:       logger,
		now:          time.Now,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", cfg.CalendarName, "endpoint", cfg.Endpoint)
	calendarPath, err := c.findCalendar(ctx, cfg.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", cfg.CalendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

func (c *Client) objectPath(uid string) string {
	return path.Join(c.calendarPath, uid+".ics")
}

// PutEvent creates or replaces the calendar object for uid with ev.
func (c *Client) PutEvent(ctx context.Context, ev *models.Event, uid string) error {
	c.logger.Debug("Writing event to CalDAV", "summary", ev.Summary, "uid", uid)

	cal := export.NewCalendar()
	cal.Children = append(cal.Children, export.EventComponent(ev, uid, c.now()))

	if _, err := c.caldavClient.PutCalendarObject(ctx, c.objectPath(uid), cal); err != nil {
		return fmt.Errorf("failed to put event on CalDAV server: %w", err)
	}

	c.logger.Info("Wrote event to CalDAV", "summary", ev.Summary)
	return nil
}

// DeleteEvent removes the calendar object for uid.
func (c *Client) DeleteEvent(ctx context.Context, uid string) error {
	if err := c.caldavClient.RemoveAll(ctx, c.objectPath(uid)); err != nil {
		return fmt.Errorf("failed to delete event from CalDAV server: %w", err)
	}
	c.logger.Info("Deleted event from CalDAV", "uid", uid)
	return nil
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", ErrCalendarNotFound
}
