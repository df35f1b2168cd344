// Package ics decodes calendar-exchange (.ics) documents into the flat
// title/date records the importer feeds to the entry store. It is a pure
// format decoder: no dedup, no persistence.
package ics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
	"github.com/agentstation/birthsync/pkg/store"
)

// Event is one decoded calendar event at date-only precision.
type Event struct {
	Title string
	Date  store.Date
}

// Decode parses a single ICS payload. A malformed document fails as a whole
// (ImportError, nothing usable returned); individual events missing a
// summary or start date are skipped with a warning, keeping the rest.
func Decode(r io.Reader, source string) ([]Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, errors.NewImportError(source, err)
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, err := decodeVEvent(ve)
		if err != nil {
			logging.Warn().Err(err).Str("source", source).Msg("skipping calendar event")
			continue
		}
		events = append(events, ev)
	}

	logging.Debug().Str("source", source).Int("event_count", len(events)).Msg("ics decode completed")
	return events, nil
}

// DecodeFile decodes the ICS document at path.
func DecodeFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewImportError(path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

func decodeVEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if out.Title == "" {
		return out, fmt.Errorf("missing SUMMARY")
	}

	start, err := eventStart(ve)
	if err != nil {
		return out, fmt.Errorf("event %q: %w", out.Title, err)
	}
	out.Date = store.Date{Year: start.Year(), Month: start.Month(), Day: start.Day()}
	return out, nil
}

// eventStart resolves DTSTART at date precision. The library's helper covers
// the date-time forms; bare DATE values (all-day events, the common case for
// birthdays) are parsed from the raw property.
func eventStart(ve *ical.VEvent) (time.Time, error) {
	if t, err := ve.GetStartAt(); err == nil && !t.IsZero() {
		return t, nil
	}

	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil || prop.Value == "" {
		return time.Time{}, fmt.Errorf("missing DTSTART")
	}

	val := strings.TrimSpace(prop.Value)
	if !strings.Contains(val, "T") {
		return time.Parse("20060102", val)
	}
	if strings.HasSuffix(val, "Z") {
		return time.Parse("20060102T150405Z", val)
	}
	return time.ParseInLocation("20060102T150405", val, time.Local)
}
