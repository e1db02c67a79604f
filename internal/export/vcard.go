package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"

	"gdata/internal/models"
)

// ContactUID returns the vCard UID of c, stable for saved contacts.
func ContactUID(c *models.Contact) string {
	if c.ID == "" {
		return "urn:uuid:" + uuid.NewString()
	}
	return c.ID
}

// relType turns a gd rel URI such as http://schemas.google.com/g/2005#home
// into a vCard TYPE value. A custom label wins over the rel.
func relType(rel, label string) string {
	if label != "" {
		return strings.ToLower(label)
	}
	if i := strings.LastIndex(rel, "#"); i >= 0 {
		rel = rel[i+1:]
	}
	switch rel {
	case "mobile":
		return "cell"
	case "home-page":
		return "home"
	}
	return rel
}

func typedField(value, typ string) *vcard.Field {
	f := &vcard.Field{Value: value, Params: make(vcard.Params)}
	if typ != "" {
		f.Params.Set(vcard.ParamType, typ)
	}
	return f
}

// ContactCard converts c into a vCard 4.0 card.
func ContactCard(c *models.Contact) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, "4.0")
	card.SetValue(vcard.FieldUID, ContactUID(c))

	fn := c.FullName()
	if fn == "" && len(c.Emails) > 0 {
		fn = c.Emails[0].Address
	}
	card.SetValue(vcard.FieldFormattedName, fn)
	card.SetName(&vcard.Name{
		HonorificPrefix: c.NamePrefix,
		GivenName:       c.GivenName,
		AdditionalName:  c.AdditionalName,
		FamilyName:      c.FamilyName,
		HonorificSuffix: c.NameSuffix,
	})

	if c.Nickname != "" {
		card.SetValue(vcard.FieldNickname, c.Nickname)
	}
	if c.Content != "" {
		card.SetValue(vcard.FieldNote, c.Content)
	}
	if !c.Updated.IsZero() {
		card.SetValue(vcard.FieldRevision, c.Updated.UTC().Format(time.RFC3339))
	}

	for _, e := range c.Emails {
		f := typedField(e.Address, relType(e.Rel, e.Label))
		if e.Primary {
			f.Params.Set(vcard.ParamPreferred, "1")
		}
		card.Add(vcard.FieldEmail, f)
	}
	for _, p := range c.Phones {
		card.Add(vcard.FieldTelephone, typedField(p.Number, relType(p.Rel, "")))
	}
	for _, o := range c.Organizations {
		if o.Name != "" {
			card.Add(vcard.FieldOrganization, &vcard.Field{Value: o.Name})
		}
		if o.Title != "" {
			card.Add(vcard.FieldTitle, &vcard.Field{Value: o.Title})
		}
	}
	for _, a := range c.Addresses {
		addr := &vcard.Address{
			Field:           typedField("", relType(a.Rel, "")),
			PostOfficeBox:   a.POBox,
			ExtendedAddress: a.Neighborhood,
			StreetAddress:   a.Street,
			Locality:        a.City,
			Region:          a.Region,
			PostalCode:      a.Postcode,
			Country:         a.Country,
		}
		card.AddAddress(addr)
	}
	for _, w := range c.Websites {
		card.Add(vcard.FieldURL, typedField(w.Href, relType(w.Rel, "")))
	}
	return card
}

// WriteVCF writes one card per contact.
func WriteVCF(w io.Writer, contacts []*models.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range contacts {
		if err := enc.Encode(ContactCard(c)); err != nil {
			return fmt.Errorf("failed to encode contact %q: %w", c.FullName(), err)
		}
	}
	return nil
}
