package google

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gdata/internal/models"
)

// Format is the wire format an entity is exchanged in.
type Format int

const (
	FormatXML Format = iota + 1
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// accepts reports whether a response Content-Type can be decoded in f. An
// absent header is accepted.
func (f Format) accepts(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	switch f {
	case FormatXML:
		return strings.Contains(ct, "xml")
	case FormatJSON:
		return strings.Contains(ct, "json")
	default:
		return false
	}
}

// endpoint is the metadata shared by all operations on one entity type.
type endpoint struct {
	name         string
	format       Format
	baseURL      string
	header       http.Header
	updateMethod string
}

func atomHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/atom+xml")
	h.Set("GData-Version", "3.0")
	return h
}

func jsonHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("GData-Version", "3.0")
	return h
}

// binding ties one entity value to its endpoint and codec for a single-entity
// operation.
type binding struct {
	endpoint *endpoint
	path     string
	query    url.Values
	isNew    bool
	etag     string
	readOnly bool
	encode   func() ([]byte, error)
	decode   func(body []byte) error
}

// bind selects the mapping for e.
func (c *Client) bind(e models.Entity) (*binding, error) {
	switch v := e.(type) {
	case *models.Contact:
		return c.bindContact(v), nil
	case *models.Group:
		return c.bindGroup(v), nil
	case *models.Calendar:
		return c.bindCalendar(v), nil
	case *models.Event:
		return c.bindEvent(v)
	case *models.Token:
		return c.bindToken(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEntity, e)
	}
}

// idSegment returns the path-escaped trailing segment of a remote id. Contact
// and group ids are full URLs; calendar and event ids are bare.
func idSegment(id string) string {
	id = strings.TrimRight(id, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return url.PathEscape(id)
}
