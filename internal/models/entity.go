// Package models holds the plain records exchanged with the Google Contacts
// and Calendar APIs. The records carry no wire knowledge; encoding lives in the
// google package.
package models

// Entity is implemented by every record the client can fetch, create, update
// or delete.
type Entity interface {
	// IsNew reports whether the record has not been persisted remotely yet.
	IsNew() bool
}
