package models

import "time"

// Token describes an OAuth bearer token as reported by the tokeninfo endpoint.
type Token struct {
	Bearer     string // Raw bearer string the info was requested for
	IssuedTo   string
	Audience   string
	Scopes     []string
	ExpiresAt  time.Time
	AccessType string
	Email      string
	UserID     string
}

// NewToken wraps a bearer string for introspection.
func NewToken(bearer string) *Token {
	return &Token{Bearer: bearer}
}

// IsNew reports whether the token has no bearer string.
func (t *Token) IsNew() bool {
	return t.Bearer == ""
}

// ExpiresIn returns the remaining lifetime relative to now.
func (t *Token) ExpiresIn(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}
