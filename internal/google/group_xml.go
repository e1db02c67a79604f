package google

import (
	"encoding/xml"
	"fmt"

	"gdata/internal/models"
)

const groupsFeedPath = "/m8/feeds/groups/default/full/"

type groupFeed struct {
	Entries []groupEntry `xml:"entry"`
}

type groupEntry struct {
	ETag     string               `xml:"etag,attr"`
	ID       *string              `xml:"id"`
	Updated  string               `xml:"updated"`
	Title    *string              `xml:"title"`
	Extended []gdExtendedProperty `xml:"extendedProperty"`
}

type gdExtendedProperty struct {
	Name string  `xml:"name,attr"`
	Info *string `xml:"info"`
}

type groupEntryOut struct {
	XMLName  xml.Name               `xml:"http://www.w3.org/2005/Atom entry"`
	NSGData  string                 `xml:"xmlns:gd,attr"`
	ETag     string                 `xml:"gd:etag,attr,omitempty"`
	ID       string                 `xml:"id,omitempty"`
	Updated  string                 `xml:"updated,omitempty"`
	Title    *atomText              `xml:"title"`
	Extended *gdExtendedPropertyOut `xml:"gd:extendedProperty"`
}

type gdExtendedPropertyOut struct {
	Name string `xml:"name,attr"`
	Info string `xml:"info,omitempty"`
}

// encodeGroup renders g as an Atom entry.
func encodeGroup(g *models.Group) ([]byte, error) {
	out := groupEntryOut{
		NSGData: nsGData,
		Updated: formatAtomTime(g.Updated),
		Title:   newAtomText(g.Title),
	}
	if !g.IsNew() {
		out.ID = g.ID
		out.ETag = g.ETag
	}
	if g.Property != nil {
		out.Extended = &gdExtendedPropertyOut{Name: g.Property.Name, Info: g.Property.Info}
	}
	return marshalAtom(out)
}

// decodeGroups decodes a groups feed or a single entry.
func decodeGroups(body []byte) (groups []*models.Group, single bool, err error) {
	dec, root, err := atomRoot(body)
	if err != nil {
		return nil, false, err
	}

	switch root.Name.Local {
	case "feed":
		var feed groupFeed
		if err := dec.DecodeElement(&feed, &root); err != nil {
			return nil, false, fmt.Errorf("failed to decode groups feed: %w", err)
		}
		groups = make([]*models.Group, 0, len(feed.Entries))
		for i := range feed.Entries {
			g, err := feed.Entries[i].toModel()
			if err != nil {
				return nil, false, err
			}
			groups = append(groups, g)
		}
		return groups, false, nil
	case "entry":
		var entry groupEntry
		if err := dec.DecodeElement(&entry, &root); err != nil {
			return nil, false, fmt.Errorf("failed to decode group entry: %w", err)
		}
		g, err := entry.toModel()
		if err != nil {
			return nil, false, err
		}
		return []*models.Group{g}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unexpected root element %q for groups", ErrUnsupportedContentType, root.Name.Local)
	}
}

func (e *groupEntry) toModel() (*models.Group, error) {
	g := &models.Group{}
	if e.ID != nil {
		g.ID = *e.ID
		g.ETag = e.ETag
	}
	if e.Title != nil {
		g.Title = *e.Title
	}

	updated, err := parseAtomTime(e.Updated)
	if err != nil {
		return nil, err
	}
	g.Updated = updated

	// Only the first extended property is kept.
	if len(e.Extended) > 0 {
		p := &models.GroupProperty{Name: e.Extended[0].Name}
		if e.Extended[0].Info != nil {
			p.Info = *e.Extended[0].Info
		}
		g.Property = p
	}
	return g, nil
}

func (c *Client) bindGroup(v *models.Group) *binding {
	path := groupsFeedPath
	if !v.IsNew() {
		path += idSegment(v.ID)
	}
	return &binding{
		endpoint: &c.groups,
		path:     path,
		isNew:    v.IsNew(),
		etag:     v.ETag,
		encode:   func() ([]byte, error) { return encodeGroup(v) },
		decode: func(body []byte) error {
			decoded, single, err := decodeGroups(body)
			if err != nil {
				return err
			}
			if !single {
				return fmt.Errorf("%w: expected a group entry, got a feed", ErrUnsupportedContentType)
			}
			*v = *decoded[0]
			return nil
		},
	}
}
