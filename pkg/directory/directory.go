// Package directory defines the boundary to the external contact directory.
// The engine receives an already-authenticated implementation; credentials
// and the wire-level client live behind this interface.
package directory

import (
	"context"
	"time"
)

// CreateRef is the sentinel directory reference for a contact that does not
// exist yet and should be created.
const CreateRef = ""

// Contact is a directory contact as returned by a listing call.
type Contact struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Ref         string `json:"ref" yaml:"ref"`
}

// Details is the fetched full record of a contact. The ETag is the opaque
// concurrency token the directory requires for a safe update.
type Details struct {
	ETag string
}

// Directory is the external system of record for contacts and their
// birthday fields. Implementations must be safe for concurrent use; the
// sync pipeline calls them from multiple workers.
type Directory interface {
	// ListContacts returns the full contact-name universe.
	ListContacts(ctx context.Context) ([]Contact, error)

	// GetContactDetails fetches a contact's current record to obtain an
	// up-to-date concurrency token before an update.
	GetContactDetails(ctx context.Context, ref string) (Details, error)

	// UpdateBirthday sets the contact's birthday to the given month and day,
	// carrying the concurrency token. The year is never sent.
	UpdateBirthday(ctx context.Context, ref, etag string, month time.Month, day int) error

	// CreateContact creates a new contact with the given display name and
	// month/day birthday.
	CreateContact(ctx context.Context, displayName string, month time.Month, day int) error
}
