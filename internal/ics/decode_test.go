package ics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/birthsync/internal/ics"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/store"
)

// crlf rejoins a readable here-doc into the wire format the parser expects.
func crlf(doc string) string {
	return strings.ReplaceAll(strings.TrimLeft(doc, "\n"), "\n", "\r\n")
}

const sampleCalendar = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//birthsync//test//EN
BEGIN:VEVENT
UID:event-1
SUMMARY:Anna's Birthday
DTSTART;VALUE=DATE:19900314
END:VEVENT
BEGIN:VEVENT
UID:event-2
SUMMARY:Bob's Birthday
DTSTART:20250701T120000Z
END:VEVENT
END:VCALENDAR
`

func TestDecode(t *testing.T) {
	events, err := ics.Decode(strings.NewReader(crlf(sampleCalendar)), "test.ics")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Anna's Birthday", events[0].Title)
	assert.Equal(t, store.Date{Year: 1990, Month: time.March, Day: 14}, events[0].Date)

	// Date-time starts truncate to date precision.
	assert.Equal(t, "Bob's Birthday", events[1].Title)
	assert.Equal(t, store.Date{Year: 2025, Month: time.July, Day: 1}, events[1].Date)
}

func TestDecodeSkipsIncompleteEvents(t *testing.T) {
	doc := crlf(`
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//birthsync//test//EN
BEGIN:VEVENT
UID:no-summary
DTSTART;VALUE=DATE:19900314
END:VEVENT
BEGIN:VEVENT
UID:no-start
SUMMARY:Bob's Birthday
END:VEVENT
BEGIN:VEVENT
UID:complete
SUMMARY:Carol's Birthday
DTSTART;VALUE=DATE:20011231
END:VEVENT
END:VCALENDAR
`)

	events, err := ics.Decode(strings.NewReader(doc), "test.ics")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Carol's Birthday", events[0].Title)
}

func TestDecodeMalformedDocument(t *testing.T) {
	_, err := ics.Decode(strings.NewReader("this is not a calendar\r\n"), "bad.ics")
	require.Error(t, err)
	assert.True(t, errors.IsImportDecode(err))
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthdays.ics")
	require.NoError(t, os.WriteFile(path, []byte(crlf(sampleCalendar)), 0o644))

	events, err := ics.DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := ics.DecodeFile(filepath.Join(t.TempDir(), "absent.ics"))
	require.Error(t, err)
	assert.True(t, errors.IsImportDecode(err))
}
