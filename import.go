package birthsync

import (
	"context"

	"github.com/agentstation/birthsync/internal/ics"
	"github.com/agentstation/birthsync/pkg/logging"
	"github.com/agentstation/birthsync/pkg/store"
)

// ImportResult summarizes one import: how many events the document decoded
// to, how many were new, and how many were skipped as exact duplicates.
type ImportResult struct {
	Decoded  int `json:"decoded" yaml:"decoded"`
	Appended int `json:"appended" yaml:"appended"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// Import decodes the calendar export at path and merges its events into the
// store. Events whose exact (title, date) pair already exists are skipped; a
// malformed document commits nothing. Candidate caches are invalidated when
// anything was appended.
func (c *client) Import(ctx context.Context, path string) (ImportResult, error) {
	events, err := ics.DecodeFile(path)
	if err != nil {
		return ImportResult{}, err
	}

	entries := make([]store.Entry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, store.Entry{Title: ev.Title, Date: ev.Date, State: store.Pending})
	}

	appended, err := c.store.Append(entries)
	if appended > 0 {
		c.engine.Invalidate()
	}

	result := ImportResult{
		Decoded:  len(events),
		Appended: appended,
		Skipped:  len(events) - appended,
	}
	logging.FromContext(ctx).Info().
		Str("source", path).
		Int("decoded", result.Decoded).
		Int("appended", result.Appended).
		Int("skipped", result.Skipped).
		Msg("calendar import completed")
	return result, err
}
