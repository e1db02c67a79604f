package google

import (
	"encoding/xml"
	"fmt"

	"gdata/internal/models"
)

const contactsFeedPath = "/m8/feeds/contacts/default/full/"

// Incoming documents. Tags carry local names only.

type contactFeed struct {
	Entries []contactEntry `xml:"entry"`
}

type contactEntry struct {
	ETag          string              `xml:"etag,attr"`
	ID            *string             `xml:"id"`
	Updated       string              `xml:"updated"`
	Name          *gdName             `xml:"name"`
	Content       *string             `xml:"content"`
	Nickname      *string             `xml:"nickname"`
	Emails        []gdEmail           `xml:"email"`
	Phones        []gdPhone           `xml:"phoneNumber"`
	Organizations []gdOrganization    `xml:"organization"`
	Addresses     []gdPostalAddress   `xml:"structuredPostalAddress"`
	UserFields    []gcUserField       `xml:"userDefinedField"`
	Websites      []gcWebsite         `xml:"website"`
	Groups        []gcGroupMembership `xml:"groupMembershipInfo"`
}

type gdName struct {
	GivenName      string `xml:"givenName"`
	AdditionalName string `xml:"additionalName"`
	FamilyName     string `xml:"familyName"`
	NamePrefix     string `xml:"namePrefix"`
	NameSuffix     string `xml:"nameSuffix"`
}

type gdEmail struct {
	Address     string `xml:"address,attr"`
	DisplayName string `xml:"displayName,attr"`
	Label       string `xml:"label,attr"`
	Rel         string `xml:"rel,attr"`
	Primary     string `xml:"primary,attr"`
}

type gdPhone struct {
	Rel    string `xml:"rel,attr"`
	Number string `xml:",chardata"`
}

type gdOrganization struct {
	Rel   string `xml:"rel,attr"`
	Name  string `xml:"orgName"`
	Title string `xml:"orgTitle"`
}

type gdPostalAddress struct {
	Rel          string `xml:"rel,attr"`
	Street       string `xml:"street"`
	Neighborhood string `xml:"neighborhood"`
	POBox        string `xml:"pobox"`
	Postcode     string `xml:"postcode"`
	City         string `xml:"city"`
	Region       string `xml:"region"`
	Country      string `xml:"country"`
}

type gcUserField struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type gcWebsite struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type gcGroupMembership struct {
	Href    string `xml:"href,attr"`
	Deleted string `xml:"deleted,attr"`
}

// Outgoing documents. Tags carry the prefixes declared on the root.

type contactEntryOut struct {
	XMLName       xml.Name   `xml:"http://www.w3.org/2005/Atom entry"`
	NSGData       string     `xml:"xmlns:gd,attr"`
	NSGContact    string     `xml:"xmlns:gContact,attr"`
	ETag          string     `xml:"gd:etag,attr,omitempty"`
	ID            string     `xml:"id,omitempty"`
	Updated       string     `xml:"updated,omitempty"`
	Name          *gdNameOut `xml:"gd:name"`
	Content       *atomText  `xml:"content"`
	Nickname      string     `xml:"gContact:nickname,omitempty"`
	Phones        []gdPhoneOut
	Emails        []gdEmailOut
	Organizations []gdOrganizationOut
	Addresses     []gdPostalAddressOut
	UserFields    []gcUserFieldOut
	Websites      []gcWebsiteOut
	Groups        []gcGroupMembershipOut
}

type gdNameOut struct {
	GivenName      string `xml:"gd:givenName,omitempty"`
	AdditionalName string `xml:"gd:additionalName,omitempty"`
	FamilyName     string `xml:"gd:familyName,omitempty"`
	NamePrefix     string `xml:"gd:namePrefix,omitempty"`
	NameSuffix     string `xml:"gd:nameSuffix,omitempty"`
}

type gdPhoneOut struct {
	XMLName xml.Name `xml:"gd:phoneNumber"`
	Rel     string   `xml:"rel,attr,omitempty"`
	Number  string   `xml:",chardata"`
}

type gdEmailOut struct {
	XMLName     xml.Name `xml:"gd:email"`
	Address     string   `xml:"address,attr"`
	DisplayName string   `xml:"displayName,attr,omitempty"`
	Rel         string   `xml:"rel,attr,omitempty"`
	Label       string   `xml:"label,attr,omitempty"`
	Primary     string   `xml:"primary,attr"`
}

type gdOrganizationOut struct {
	XMLName xml.Name `xml:"gd:organization"`
	Rel     string   `xml:"rel,attr,omitempty"`
	Name    string   `xml:"gd:orgName"`
	Title   string   `xml:"gd:orgTitle"`
}

type gdPostalAddressOut struct {
	XMLName      xml.Name `xml:"gd:structuredPostalAddress"`
	Rel          string   `xml:"rel,attr,omitempty"`
	Street       string   `xml:"gd:street,omitempty"`
	Neighborhood string   `xml:"gd:neighborhood,omitempty"`
	POBox        string   `xml:"gd:pobox,omitempty"`
	Postcode     string   `xml:"gd:postcode,omitempty"`
	City         string   `xml:"gd:city,omitempty"`
	Region       string   `xml:"gd:region,omitempty"`
	Country      string   `xml:"gd:country,omitempty"`
}

type gcUserFieldOut struct {
	XMLName xml.Name `xml:"gContact:userDefinedField"`
	Key     string   `xml:"key,attr"`
	Value   string   `xml:"value,attr"`
}

type gcWebsiteOut struct {
	XMLName xml.Name `xml:"gContact:website"`
	Href    string   `xml:"href,attr"`
	Rel     string   `xml:"rel,attr,omitempty"`
}

type gcGroupMembershipOut struct {
	XMLName xml.Name `xml:"gContact:groupMembershipInfo"`
	Href    string   `xml:"href,attr"`
	Deleted string   `xml:"deleted,attr"`
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// encodeContact renders c as an Atom entry. The id and etag are only written
// for persisted contacts.
func encodeContact(c *models.Contact) ([]byte, error) {
	out := contactEntryOut{
		NSGData:    nsGData,
		NSGContact: nsGContact,
		Updated:    formatAtomTime(c.Updated),
		Content:    newAtomText(c.Content),
		Nickname:   c.Nickname,
	}
	if !c.IsNew() {
		out.ID = c.ID
		out.ETag = c.ETag
	}
	if c.FullName() != "" {
		out.Name = &gdNameOut{
			GivenName:      c.GivenName,
			AdditionalName: c.AdditionalName,
			FamilyName:     c.FamilyName,
			NamePrefix:     c.NamePrefix,
			NameSuffix:     c.NameSuffix,
		}
	}
	for _, p := range c.Phones {
		out.Phones = append(out.Phones, gdPhoneOut{Rel: p.Rel, Number: p.Number})
	}
	for _, e := range c.Emails {
		out.Emails = append(out.Emails, gdEmailOut{
			Address:     e.Address,
			DisplayName: e.DisplayName,
			Rel:         e.Rel,
			Label:       e.Label,
			Primary:     boolAttr(e.Primary),
		})
	}
	for _, o := range c.Organizations {
		out.Organizations = append(out.Organizations, gdOrganizationOut{Rel: o.Rel, Name: o.Name, Title: o.Title})
	}
	for _, a := range c.Addresses {
		out.Addresses = append(out.Addresses, gdPostalAddressOut{
			Rel:          a.Rel,
			Street:       a.Street,
			Neighborhood: a.Neighborhood,
			POBox:        a.POBox,
			Postcode:     a.Postcode,
			City:         a.City,
			Region:       a.Region,
			Country:      a.Country,
		})
	}
	for _, f := range c.UserFields {
		out.UserFields = append(out.UserFields, gcUserFieldOut{Key: f.Key, Value: f.Value})
	}
	for _, w := range c.Websites {
		out.Websites = append(out.Websites, gcWebsiteOut{Href: w.Href, Rel: w.Rel})
	}
	for _, g := range c.Groups {
		out.Groups = append(out.Groups, gcGroupMembershipOut{Href: g.ID, Deleted: "false"})
	}
	return marshalAtom(out)
}

// decodeContacts decodes a contacts feed or a single entry. single reports
// which of the two the document was.
func decodeContacts(body []byte) (contacts []*models.Contact, single bool, err error) {
	dec, root, err := atomRoot(body)
	if err != nil {
		return nil, false, err
	}

	switch root.Name.Local {
	case "feed":
		var feed contactFeed
		if err := dec.DecodeElement(&feed, &root); err != nil {
			return nil, false, fmt.Errorf("failed to decode contacts feed: %w", err)
		}
		contacts = make([]*models.Contact, 0, len(feed.Entries))
		for i := range feed.Entries {
			c, err := feed.Entries[i].toModel()
			if err != nil {
				return nil, false, err
			}
			contacts = append(contacts, c)
		}
		return contacts, false, nil
	case "entry":
		var entry contactEntry
		if err := dec.DecodeElement(&entry, &root); err != nil {
			return nil, false, fmt.Errorf("failed to decode contact entry: %w", err)
		}
		c, err := entry.toModel()
		if err != nil {
			return nil, false, err
		}
		return []*models.Contact{c}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unexpected root element %q for contacts", ErrUnsupportedContentType, root.Name.Local)
	}
}

func (e *contactEntry) toModel() (*models.Contact, error) {
	c := models.NewContact()
	if e.ID != nil {
		c.ID = *e.ID
		c.ETag = e.ETag
	}

	updated, err := parseAtomTime(e.Updated)
	if err != nil {
		return nil, err
	}
	c.Updated = updated

	if e.Name != nil {
		c.GivenName = e.Name.GivenName
		c.AdditionalName = e.Name.AdditionalName
		c.FamilyName = e.Name.FamilyName
		c.NamePrefix = e.Name.NamePrefix
		c.NameSuffix = e.Name.NameSuffix
	}
	if e.Content != nil {
		c.Content = *e.Content
	}
	if e.Nickname != nil {
		c.Nickname = *e.Nickname
	}

	for _, m := range e.Emails {
		c.AddEmail(models.Email{
			Address:     m.Address,
			DisplayName: m.DisplayName,
			Label:       m.Label,
			Rel:         m.Rel,
			Primary:     m.Primary == "true",
		})
	}
	for _, p := range e.Phones {
		c.AddPhone(models.Phone{Rel: p.Rel, Number: p.Number})
	}
	for _, o := range e.Organizations {
		c.AddOrganization(models.Organization{Name: o.Name, Title: o.Title, Rel: o.Rel})
	}
	for _, a := range e.Addresses {
		c.AddAddress(models.Address{
			Street:       a.Street,
			Neighborhood: a.Neighborhood,
			POBox:        a.POBox,
			Postcode:     a.Postcode,
			City:         a.City,
			Region:       a.Region,
			Country:      a.Country,
			Rel:          a.Rel,
		})
	}
	for _, f := range e.UserFields {
		c.SetUserField(f.Key, f.Value)
	}
	for _, g := range e.Groups {
		c.AddGroup(g.Href)
	}
	for _, w := range e.Websites {
		c.AddWebsite(models.Website{Href: w.Href, Rel: w.Rel})
	}
	return c, nil
}

func (c *Client) bindContact(v *models.Contact) *binding {
	path := contactsFeedPath
	if !v.IsNew() {
		path += idSegment(v.ID)
	}
	return &binding{
		endpoint: &c.contacts,
		path:     path,
		isNew:    v.IsNew(),
		etag:     v.ETag,
		encode:   func() ([]byte, error) { return encodeContact(v) },
		decode: func(body []byte) error {
			decoded, single, err := decodeContacts(body)
			if err != nil {
				return err
			}
			if !single {
				return fmt.Errorf("%w: expected a contact entry, got a feed", ErrUnsupportedContentType)
			}
			*v = *decoded[0]
			return nil
		},
	}
}
