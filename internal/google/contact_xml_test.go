package google

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdata/internal/models"
)

func decodeSingleContact(t *testing.T) *models.Contact {
	t.Helper()
	contacts, single, err := decodeContacts(readFixture(t, "single_contact.xml"))
	require.NoError(t, err)
	require.True(t, single)
	require.Len(t, contacts, 1)
	return contacts[0]
}

func TestDecodeContact(t *testing.T) {
	c := decodeSingleContact(t)

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, "http://www.google.com/m8/feeds/contacts/michal%40futuresimple.com/base/2f30e7d8bf01953", c.ID)
		assert.Equal(t, `"Q3o6cDVSLit7I2A9WhVSGEkOQgI."`, c.ETag)
		assert.False(t, c.IsNew())
	})

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "Sir", c.NamePrefix)
		assert.Equal(t, "Mike", c.GivenName)
		assert.Equal(t, "Thomas", c.AdditionalName)
		assert.Equal(t, "Bugno", c.FamilyName)
		assert.Equal(t, "XI", c.NameSuffix)
		assert.Equal(t, "Sir Mike Thomas Bugno XI", c.FullName())
	})

	t.Run("scalars", func(t *testing.T) {
		assert.Equal(t, "Notes about Mike", c.Content)
		assert.Equal(t, "Majki", c.Nickname)
		assert.True(t, c.Updated.Equal(time.Date(2012, 3, 15, 20, 49, 22, 418000000, time.UTC)))
	})

	t.Run("emails", func(t *testing.T) {
		require.Len(t, c.Emails, 4)
		assert.Equal(t, models.Email{Address: "home@example.com", Rel: models.RelHome, Primary: true}, c.Emails[0])
		assert.Equal(t, models.Email{Address: "work@example.com", Rel: models.RelWork}, c.Emails[1])
		assert.Equal(t, models.Email{Address: "other@example.com", Rel: models.RelOther}, c.Emails[2])
		assert.Equal(t, models.Email{Address: "nonstandard@example.com", Label: "Non standard"}, c.Emails[3])
	})

	t.Run("phones", func(t *testing.T) {
		assert.Equal(t, []models.Phone{
			{Rel: models.RelHome, Number: "444-home"},
			{Rel: models.RelWork, Number: "023-office"},
			{Rel: models.RelMobile, Number: "43-mobile"},
			{Rel: models.RelMain, Number: "888-main"},
		}, c.Phones)
	})

	t.Run("organizations", func(t *testing.T) {
		assert.Equal(t, []models.Organization{{Name: "FutureSimple", Title: "Coder", Rel: models.RelOther}}, c.Organizations)
	})

	t.Run("addresses", func(t *testing.T) {
		require.Len(t, c.Addresses, 2)
		assert.Equal(t, models.Address{
			Street: "ulica", Neighborhood: "okolica", POBox: "skrytka", Postcode: "kod",
			City: "miasto", Region: "wojewodztwo", Country: "kraj", Rel: models.RelHome,
		}, c.Addresses[0])
		assert.Equal(t, "ulica2", c.Addresses[1].Street)
		assert.Equal(t, "kraj2", c.Addresses[1].Country)
		assert.Equal(t, models.RelWork, c.Addresses[1].Rel)
	})

	t.Run("groups are id-only stubs", func(t *testing.T) {
		assert.Equal(t, []models.Group{
			{ID: "http://www.google.com/m8/feeds/groups/michal%40futuresimple.com/base/6"},
			{ID: "http://www.google.com/m8/feeds/groups/michal%40futuresimple.com/base/5747930b8e7844f6"},
		}, c.Groups)
	})

	t.Run("user fields and websites", func(t *testing.T) {
		assert.Equal(t, []models.UserField{{Key: "own key", Value: "Own value"}}, c.UserFields)
		assert.Equal(t, []models.Website{{Href: "glowna.com", Rel: "home-page"}, {Href: "sluzbowy.com", Rel: "work"}}, c.Websites)
	})
}

func TestEncodeContact(t *testing.T) {
	c := decodeSingleContact(t)

	out, err := encodeContact(c)
	require.NoError(t, err)

	counts := elementCounts(t, out)
	assert.Equal(t, 1, counts[nsAtom+" entry"])
	assert.Equal(t, 1, counts[nsAtom+" id"])
	assert.Equal(t, 1, counts[nsGData+" name"])
	assert.Equal(t, 4, counts[nsGData+" email"])
	assert.Equal(t, 4, counts[nsGData+" phoneNumber"])
	assert.Equal(t, 1, counts[nsGData+" organization"])
	assert.Equal(t, 2, counts[nsGData+" structuredPostalAddress"])
	assert.Equal(t, 2, counts[nsGContact+" groupMembershipInfo"])
	assert.Equal(t, 1, counts[nsGContact+" userDefinedField"])
	assert.Equal(t, 2, counts[nsGContact+" website"])
	assert.Equal(t, 1, counts[nsGContact+" nickname"])

	assert.Contains(t, string(out), `gd:etag="&#34;Q3o6cDVSLit7I2A9WhVSGEkOQgI.&#34;"`)
	assert.Contains(t, string(out), `<content type="text">Notes about Mike</content>`)
	assert.Contains(t, string(out), `<updated>2012-03-15T20:49:22.418Z</updated>`)
	assert.Contains(t, string(out), `primary="true"`)
	assert.Contains(t, string(out), `deleted="false"`)
}

func TestEncodeContact_PrimaryFlags(t *testing.T) {
	c := decodeSingleContact(t)
	out, err := encodeContact(c)
	require.NoError(t, err)

	var doc struct {
		Emails []gdEmail `xml:"email"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))

	var addresses, primaries []string
	for _, e := range doc.Emails {
		addresses = append(addresses, e.Address)
		primaries = append(primaries, e.Primary)
	}
	assert.Equal(t, []string{"home@example.com", "work@example.com", "other@example.com", "nonstandard@example.com"}, addresses)
	assert.Equal(t, []string{"true", "false", "false", "false"}, primaries)
}

func TestContactRoundTrip(t *testing.T) {
	original := decodeSingleContact(t)

	out, err := encodeContact(original)
	require.NoError(t, err)

	decoded, single, err := decodeContacts(out)
	require.NoError(t, err)
	require.True(t, single)
	assert.Equal(t, original, decoded[0])
}

func TestEncodeContact_New(t *testing.T) {
	c := models.NewContact()
	c.GivenName = "Ada"
	c.AddEmail(models.Email{Address: "ada@example.com", Rel: models.RelWork})

	out, err := encodeContact(c)
	require.NoError(t, err)

	counts := elementCounts(t, out)
	assert.Zero(t, counts[nsAtom+" id"])
	assert.Zero(t, counts[nsAtom+" updated"])
	assert.Zero(t, counts[nsAtom+" content"])
	assert.Zero(t, counts[nsGContact+" nickname"])
	assert.Zero(t, counts[nsGData+" familyName"])
	assert.Equal(t, 1, counts[nsGData+" givenName"])
	assert.NotContains(t, string(out), "etag")

	decoded, _, err := decodeContacts(out)
	require.NoError(t, err)
	assert.True(t, decoded[0].IsNew())
	assert.Empty(t, decoded[0].Phones)
	assert.Empty(t, decoded[0].Content)
}

func TestEncodeContact_NoNameParts(t *testing.T) {
	out, err := encodeContact(&models.Contact{Nickname: "anon"})
	require.NoError(t, err)
	assert.Zero(t, elementCounts(t, out)[nsGData+" name"])
}

func TestDecodeContacts_Feed(t *testing.T) {
	contacts, single, err := decodeContacts(readFixture(t, "contact_list.xml"))
	require.NoError(t, err)
	assert.False(t, single)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Awangarda druga", contacts[0].FullName())
	assert.Equal(t, "Sir Bartek Maciej Niemtur III", contacts[1].FullName())
}

func TestDecodeContacts_EmptyFeed(t *testing.T) {
	contacts, single, err := decodeContacts(readFixture(t, "no_contacts.xml"))
	require.NoError(t, err)
	assert.False(t, single)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestDecodeContacts_Errors(t *testing.T) {
	_, _, err := decodeContacts([]byte(`<html><body>nope</body></html>`))
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	_, _, err = decodeContacts([]byte(``))
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	_, _, err = decodeContacts([]byte(`<entry><updated>yesterday</updated></entry>`))
	assert.Error(t, err)
}

func TestIDSegment(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"http://www.google.com/m8/feeds/contacts/michal%40futuresimple.com/base/2f30e7d8bf01953", "2f30e7d8bf01953"},
		{"http://www.google.com/m8/feeds/groups/x/base/6/", "6"},
		{"primary", "primary"},
		{"team@group.calendar.google.com", "team@group.calendar.google.com"},
		{"en.usa#holiday@group.v.calendar.google.com", "en.usa%23holiday@group.v.calendar.google.com"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, idSegment(tt.id))
		})
	}
}
