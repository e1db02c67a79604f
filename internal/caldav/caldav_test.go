package caldav

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdata/internal/models"
)

const (
	principalResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/</d:href>
    <d:propstat>
      <d:prop><d:current-user-principal><d:href>/principals/alice/</d:href></d:current-user-principal></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

	homeSetResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/principals/alice/</d:href>
    <d:propstat>
      <d:prop><c:calendar-home-set><d:href>/calendars/alice/</d:href></c:calendar-home-set></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

	calendarsResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/calendars/alice/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/calendars/alice/home/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/><c:calendar/></d:resourcetype><d:displayname>Home</d:displayname></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/calendars/alice/work/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/><c:calendar/></d:resourcetype><d:displayname>Work</d:displayname></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`
)

// fakeServer answers the discovery PROPFINDs and records writes.
type fakeServer struct {
	mu      sync.Mutex
	puts    map[string]string
	deletes []string
	auth    []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, pass, _ := r.BasicAuth()
	f.auth = append(f.auth, user+":"+pass)

	switch r.Method {
	case "PROPFIND":
		var body string
		switch r.URL.Path {
		case "/":
			body = principalResponse
		case "/principals/alice/":
			body = homeSetResponse
		case "/calendars/alice/":
			body = calendarsResponse
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = io.WriteString(w, body)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.puts[r.URL.Path] = string(data)
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		f.deletes = append(f.deletes, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeServer(t *testing.T) (*fakeServer, string) {
	t.Helper()
	fs := &fakeServer{puts: make(map[string]string)}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return fs, srv.URL + "/"
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewClient_FindsCalendarByName(t *testing.T) {
	fs, endpoint := newFakeServer(t)

	c, err := NewClient(context.Background(), discardLogger, Config{
		Endpoint:     endpoint,
		Username:     "alice",
		Password:     "app-password",
		CalendarName: "Work",
	})
	require.NoError(t, err)
	assert.Equal(t, "/calendars/alice/work/", c.calendarPath)

	require.NotEmpty(t, fs.auth)
	for _, a := range fs.auth {
		assert.Equal(t, "alice:app-password", a)
	}
}

func TestNewClient_UnknownCalendar(t *testing.T) {
	_, endpoint := newFakeServer(t)

	_, err := NewClient(context.Background(), discardLogger, Config{Endpoint: endpoint, CalendarName: "Nope"})
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestClient_PutAndDeleteEvent(t *testing.T) {
	fs, endpoint := newFakeServer(t)
	c, err := NewClient(context.Background(), discardLogger, Config{Endpoint: endpoint, CalendarName: "Home"})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	ev := &models.Event{
		ID:      "evt1",
		Summary: "Standup",
		Start:   models.EventTime{Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		End:     models.EventTime{Time: time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)},
	}
	require.NoError(t, c.PutEvent(context.Background(), ev, "evt1@google.com"))

	body, ok := fs.puts["/calendars/alice/home/evt1@google.com.ics"]
	require.True(t, ok, "object written at %v", fs.puts)
	assert.Contains(t, body, "UID:evt1@google.com")
	assert.Contains(t, body, "SUMMARY:Standup")
	assert.Contains(t, body, "DTSTART:20240501T090000Z")

	require.NoError(t, c.DeleteEvent(context.Background(), "evt1@google.com"))
	assert.Equal(t, []string{"/calendars/alice/home/evt1@google.com.ics"}, fs.deletes)
}
