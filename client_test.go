package birthsync_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/birthsync"
	"github.com/agentstation/birthsync/pkg/directory"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/match"
	"github.com/agentstation/birthsync/pkg/store"
)

// memDirectory is an in-memory Directory for facade tests.
type memDirectory struct {
	mu       sync.Mutex
	contacts []directory.Contact
	updated  map[string]string
	created  []string
}

func newMemDirectory(names ...string) *memDirectory {
	d := &memDirectory{updated: make(map[string]string)}
	for i, name := range names {
		d.contacts = append(d.contacts, directory.Contact{
			DisplayName: name,
			Ref:         fmt.Sprintf("people/c%d", i+1),
		})
	}
	return d
}

func (d *memDirectory) ListContacts(context.Context) ([]directory.Contact, error) {
	return d.contacts, nil
}

func (d *memDirectory) GetContactDetails(_ context.Context, ref string) (directory.Details, error) {
	return directory.Details{ETag: "etag-" + ref}, nil
}

func (d *memDirectory) UpdateBirthday(_ context.Context, ref, etag string, month time.Month, day int) error {
	if etag != "etag-"+ref {
		return fmt.Errorf("stale etag for %s", ref)
	}
	d.mu.Lock()
	d.updated[ref] = fmt.Sprintf("--%02d-%02d", month, day)
	d.mu.Unlock()
	return nil
}

func (d *memDirectory) CreateContact(_ context.Context, displayName string, _ time.Month, _ int) error {
	d.mu.Lock()
	d.created = append(d.created, displayName)
	d.mu.Unlock()
	return nil
}

func writeICS(t *testing.T, events map[string]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//birthsync//test//EN\r\n")
	i := 0
	for title, date := range events {
		i++
		fmt.Fprintf(&b, "BEGIN:VEVENT\r\nUID:ev-%d\r\nSUMMARY:%s\r\nDTSTART;VALUE=DATE:%s\r\nEND:VEVENT\r\n", i, title, date)
	}
	b.WriteString("END:VCALENDAR\r\n")

	path := filepath.Join(t.TempDir(), "birthdays.ics")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newTestClient(t *testing.T, dir directory.Directory) birthsync.Client {
	t.Helper()
	opts := []birthsync.Option{
		birthsync.WithStorePath(filepath.Join(t.TempDir(), "calendar.csv")),
	}
	if dir != nil {
		opts = append(opts, birthsync.WithDirectory(dir))
	}
	client, err := birthsync.New(opts...)
	require.NoError(t, err)
	return client
}

func TestImportThenReimport(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()

	path := writeICS(t, map[string]string{
		"Anna Lee's Birthday": "19900314",
		"Bob Kim's Birthday":  "19850701",
	})

	result, err := client.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Decoded)
	assert.Equal(t, 2, result.Appended)
	assert.Equal(t, 0, result.Skipped)

	result, err = client.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Decoded)
	assert.Equal(t, 0, result.Appended)
	assert.Equal(t, 2, result.Skipped)

	assert.Len(t, client.Store().Pending(), 2)
}

func TestApplyEndToEnd(t *testing.T) {
	dir := newMemDirectory("Anna Lee", "Bob Kim")
	client := newTestClient(t, dir)
	ctx := context.Background()

	path := writeICS(t, map[string]string{
		"Anna Lee's Birthday": "19900314",
	})
	_, err := client.Import(ctx, path)
	require.NoError(t, err)

	results, err := client.Apply(ctx, nil)
	require.NoError(t, err)
	for r := range results {
		assert.NoError(t, r.Err)
	}

	assert.Empty(t, client.Store().Pending())
	require.Len(t, client.Store().Done(), 1)
	// Only month and day reach the directory.
	assert.Equal(t, "--03-14", dir.updated["people/c1"])
	assert.Empty(t, dir.created)
}

func TestApplyWithCreateOverride(t *testing.T) {
	dir := newMemDirectory("Anna Lee")
	client := newTestClient(t, dir)
	ctx := context.Background()

	path := writeICS(t, map[string]string{"Anna Lee's Birthday": "19900314"})
	_, err := client.Import(ctx, path)
	require.NoError(t, err)

	id := client.Store().Pending()[0].ID
	require.NoError(t, client.Engine().SetChosen(id, match.CreateNewContact))
	require.NoError(t, client.ApplyOne(ctx, id))

	assert.Equal(t, []string{"Anna Lee's Birthday"}, dir.created)
	assert.Empty(t, dir.updated)
	assert.Empty(t, client.Store().Pending())
}

func TestApplyRejectsNonPending(t *testing.T) {
	dir := newMemDirectory("Anna Lee")
	client := newTestClient(t, dir)
	ctx := context.Background()

	path := writeICS(t, map[string]string{"Anna Lee's Birthday": "19900314"})
	_, err := client.Import(ctx, path)
	require.NoError(t, err)

	id := client.Store().Pending()[0].ID
	require.NoError(t, client.Remove(id))

	_, err = client.Apply(ctx, []string{id})
	assert.True(t, errors.IsTerminalState(err))

	err = client.ApplyOne(ctx, id)
	assert.True(t, errors.IsTerminalState(err))
}

func TestApplyWithoutDirectory(t *testing.T) {
	client := newTestClient(t, nil)

	_, err := client.Apply(context.Background(), nil)
	assert.True(t, errors.IsDirectory(err))

	err = client.ApplyOne(context.Background(), "any")
	assert.True(t, errors.IsDirectory(err))
}

func TestApplyUnknownID(t *testing.T) {
	dir := newMemDirectory("Anna Lee")
	client := newTestClient(t, dir)

	_, err := client.Apply(context.Background(), []string{"no-such-id"})
	assert.True(t, errors.IsNotFound(err))
}

func TestRemoveSurvivesReimport(t *testing.T) {
	client := newTestClient(t, nil)
	ctx := context.Background()

	path := writeICS(t, map[string]string{"Anna Lee's Birthday": "19900314"})
	_, err := client.Import(ctx, path)
	require.NoError(t, err)

	id := client.Store().Pending()[0].ID
	require.NoError(t, client.Remove(id))

	result, err := client.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Appended)

	entry, err := client.Store().Get(id)
	require.NoError(t, err)
	assert.Equal(t, store.Removed, entry.State)
}

func TestWithContactsSkipsListing(t *testing.T) {
	client, err := birthsync.New(
		birthsync.WithStorePath(filepath.Join(t.TempDir(), "calendar.csv")),
		birthsync.WithContacts([]directory.Contact{{DisplayName: "Anna Lee", Ref: "people/c1"}}),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestOptionValidation(t *testing.T) {
	_, err := birthsync.New(birthsync.WithStorePath(""))
	assert.Error(t, err)

	_, err = birthsync.New(birthsync.WithWorkers(0))
	assert.Error(t, err)

	_, err = birthsync.New(birthsync.WithLimit(-1))
	assert.Error(t, err)
}
