package models

import (
	"strings"
	"time"
)

// Relation values used by the contacts feed to classify sub-elements.
const (
	RelHome   = "http://schemas.google.com/g/2005#home"
	RelWork   = "http://schemas.google.com/g/2005#work"
	RelOther  = "http://schemas.google.com/g/2005#other"
	RelMobile = "http://schemas.google.com/g/2005#mobile"
	RelMain   = "http://schemas.google.com/g/2005#main"
)

// Email is a gd:email entry. Rel and Label are mutually exclusive on the wire
// but both are kept as parsed.
type Email struct {
	Address     string
	DisplayName string
	Label       string
	Rel         string
	Primary     bool
}

// Phone is a gd:phoneNumber entry.
type Phone struct {
	Rel    string
	Number string
}

// Organization is a gd:organization entry.
type Organization struct {
	Name  string
	Title string
	Rel   string
}

// Address is a gd:structuredPostalAddress entry.
type Address struct {
	Street       string
	Neighborhood string
	POBox        string
	Postcode     string
	City         string
	Region       string
	Country      string
	Rel          string
}

// Website is a gContact:website entry.
type Website struct {
	Href string
	Rel  string
}

// UserField is a gContact:userDefinedField entry.
type UserField struct {
	Key   string
	Value string
}

// Contact represents an entry of the contacts feed.
// Empty strings and zero times mean the value is absent.
type Contact struct {
	ID      string // Full remote id URL, set by the server
	ETag    string
	Updated time.Time

	NamePrefix     string
	GivenName      string
	AdditionalName string
	FamilyName     string
	NameSuffix     string

	Content  string
	Nickname string

	Emails        []Email
	Phones        []Phone
	Organizations []Organization
	Addresses     []Address
	Websites      []Website
	Groups        []Group // Membership stubs, only ID is set
	UserFields    []UserField
}

// NewContact returns an empty contact in the new state.
func NewContact() *Contact {
	return &Contact{}
}

// IsNew reports whether the contact has no remote id.
func (c *Contact) IsNew() bool {
	return c.ID == ""
}

// FullName joins the present name parts in display order.
func (c *Contact) FullName() string {
	var parts []string
	for _, p := range []string{c.NamePrefix, c.GivenName, c.AdditionalName, c.FamilyName, c.NameSuffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (c *Contact) AddEmail(e Email) {
	c.Emails = append(c.Emails, e)
}

func (c *Contact) AddPhone(p Phone) {
	c.Phones = append(c.Phones, p)
}

func (c *Contact) AddOrganization(o Organization) {
	c.Organizations = append(c.Organizations, o)
}

func (c *Contact) AddAddress(a Address) {
	c.Addresses = append(c.Addresses, a)
}

func (c *Contact) AddWebsite(w Website) {
	c.Websites = append(c.Websites, w)
}

// AddGroup records a membership in the group with the given remote id.
func (c *Contact) AddGroup(groupID string) {
	c.Groups = append(c.Groups, Group{ID: groupID})
}

// SetUserField sets a custom field. An existing key keeps its position and
// takes the new value.
func (c *Contact) SetUserField(key, value string) {
	for i := range c.UserFields {
		if c.UserFields[i].Key == key {
			c.UserFields[i].Value = value
			return
		}
	}
	c.UserFields = append(c.UserFields, UserField{Key: key, Value: value})
}

// UserField returns the value of a custom field.
func (c *Contact) UserField(key string) (string, bool) {
	for _, f := range c.UserFields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
