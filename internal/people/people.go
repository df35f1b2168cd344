// Package people implements the directory interface over the Google People
// API. It receives an already-authenticated service handle; the auth
// handshake lives in internal/auth.
package people

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	people "google.golang.org/api/people/v1"

	"github.com/agentstation/birthsync/pkg/directory"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
)

// listPageSize is the connections page size. Pages are walked until the
// directory is exhausted.
const listPageSize = 500

// Compile-time interface check to ensure proper implementation.
var _ directory.Directory = (*Client)(nil)

// Client is a directory.Directory backed by the People API.
type Client struct {
	svc    *people.Service
	logger *zerolog.Logger
}

// NewClient wraps an authenticated People service.
func NewClient(svc *people.Service) *Client {
	return &Client{svc: svc, logger: logging.Default()}
}

// ListContacts walks the authenticated user's connections and returns every
// contact that has a display name.
func (c *Client) ListContacts(ctx context.Context) ([]directory.Contact, error) {
	var contacts []directory.Contact

	call := c.svc.People.Connections.List("people/me").
		PageSize(listPageSize).
		PersonFields("names,birthdays")

	err := call.Pages(ctx, func(resp *people.ListConnectionsResponse) error {
		for _, person := range resp.Connections {
			if len(person.Names) == 0 || person.Names[0].DisplayName == "" {
				continue
			}
			contacts = append(contacts, directory.Contact{
				DisplayName: person.Names[0].DisplayName,
				Ref:         person.ResourceName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewDirectoryError("list", "", err)
	}

	c.logger.Debug().Int("contact_count", len(contacts)).Msg("listed directory contacts")
	return contacts, nil
}

// GetContactDetails fetches the contact's current record for its concurrency
// token. When the top-level etag is absent the first metadata source etag is
// used instead, matching the directory's own fallback for older records.
func (c *Client) GetContactDetails(ctx context.Context, ref string) (directory.Details, error) {
	person, err := c.svc.People.Get(ref).
		PersonFields("names,birthdays,metadata").
		Context(ctx).
		Do()
	if err != nil {
		return directory.Details{}, errors.NewDirectoryError("get", ref, err)
	}

	etag := person.Etag
	if etag == "" && person.Metadata != nil && len(person.Metadata.Sources) > 0 {
		etag = person.Metadata.Sources[0].Etag
	}
	return directory.Details{ETag: etag}, nil
}

// UpdateBirthday sets the contact's birthday to month/day, carrying the
// concurrency token. No year field is ever included.
func (c *Client) UpdateBirthday(ctx context.Context, ref, etag string, month time.Month, day int) error {
	body := &people.Person{
		Etag: etag,
		Birthdays: []*people.Birthday{
			{Date: &people.Date{Month: int64(month), Day: int64(day)}},
		},
	}

	_, err := c.svc.People.UpdateContact(ref, body).
		UpdatePersonFields("birthdays").
		Context(ctx).
		Do()
	if err != nil {
		return errors.NewDirectoryError("update", ref, err)
	}

	c.logger.Debug().Str("ref", ref).Int("month", int(month)).Int("day", day).Msg("updated contact birthday")
	return nil
}

// CreateContact creates a new contact with the display name and a year-less
// month/day birthday.
func (c *Client) CreateContact(ctx context.Context, displayName string, month time.Month, day int) error {
	body := &people.Person{
		Names: []*people.Name{
			{UnstructuredName: displayName},
		},
		Birthdays: []*people.Birthday{
			{Date: &people.Date{Month: int64(month), Day: int64(day)}},
		},
	}

	_, err := c.svc.People.CreateContact(body).Context(ctx).Do()
	if err != nil {
		return errors.NewDirectoryError("create", "", err)
	}

	c.logger.Debug().Str("name", displayName).Int("month", int(month)).Int("day", day).Msg("created contact")
	return nil
}
