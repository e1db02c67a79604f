package models

// Calendar represents a Google calendar.
type Calendar struct {
	ID          string
	ETag        string
	Summary     string
	Description string
	TimeZone    string
}

// IsNew reports whether the calendar has no remote id.
func (c *Calendar) IsNew() bool {
	return c.ID == ""
}
