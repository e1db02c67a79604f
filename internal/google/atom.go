package google

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	nsAtom     = "http://www.w3.org/2005/Atom"
	nsGData    = "http://schemas.google.com/g/2005"
	nsGContact = "http://schemas.google.com/contact/2008"

	atomTimeLayout = "2006-01-02T15:04:05.000Z"
)

// atomText is an Atom text construct such as <content type="text">.
type atomText struct {
	Type string `xml:"type,attr,omitempty"`
	Text string `xml:",chardata"`
}

func newAtomText(s string) *atomText {
	if s == "" {
		return nil
	}
	return &atomText{Type: "text", Text: s}
}

// atomRoot reads up to the document element and returns it with a decoder
// positioned right after it. Element and attribute lookups in the structs
// below match on local names only, so declared namespaces and prefixes do not
// affect decoding.
func atomRoot(body []byte) (*xml.Decoder, xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, xml.StartElement{}, fmt.Errorf("%w: empty xml document", ErrUnsupportedContentType)
			}
			return nil, xml.StartElement{}, fmt.Errorf("failed to parse xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return dec, start, nil
		}
	}
}

func formatAtomTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(atomTimeLayout)
}

func parseAtomTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid updated timestamp %q: %w", s, err)
	}
	return t, nil
}

// marshalAtom renders an outgoing entry with the XML declaration.
func marshalAtom(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode atom entry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
