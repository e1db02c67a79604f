package models

import "time"

// GroupProperty is the single gd:extendedProperty a group may carry.
type GroupProperty struct {
	Name string
	Info string
}

// Group represents an entry of the contact groups feed.
type Group struct {
	ID       string
	ETag     string
	Updated  time.Time
	Title    string
	Property *GroupProperty
}

// NewGroup returns an empty group in the new state.
func NewGroup(title string) *Group {
	return &Group{Title: title}
}

// IsNew reports whether the group has no remote id.
func (g *Group) IsNew() bool {
	return g.ID == ""
}
