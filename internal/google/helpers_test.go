package google

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTransport records requests and replays canned responses in order.
type fakeTransport struct {
	requests  []*Request
	responses []*Response
}

func (f *fakeTransport) Send(_ context.Context, req *Request) (*Response, error) {
	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return nil, errors.New("fakeTransport: no response queued")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeTransport) queue(status int, contentType string, body string) {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	f.responses = append(f.responses, &Response{StatusCode: status, Header: h, Body: []byte(body)})
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T) (*Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	c := NewClient("secret-token", Config{
		Transport:       ft,
		ContactsBaseURL: "https://contacts.test",
		CalendarBaseURL: "https://calendar.test",
		Now:             func() time.Time { return fixedNow },
	})
	return c, ft
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// contactFeedOf renders a contacts feed with n minimal entries whose ids
// start after offset.
func contactFeedOf(offset, n int) string {
	var b strings.Builder
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<entry gd:etag="e%d"><id>http://www.google.com/m8/feeds/contacts/x/base/%d</id></entry>`, offset+i, offset+i)
	}
	b.WriteString(`</feed>`)
	return b.String()
}

// elementCounts counts the elements of an XML document by namespace and
// local name, e.g. "http://schemas.google.com/g/2005 email".
func elementCounts(t *testing.T, doc []byte) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Space+" "+se.Name.Local]++
		}
	}
	return counts
}
