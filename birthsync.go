// Package birthsync reconciles calendar-derived birthday events against an
// external contact directory. It proposes a fuzzy-matched contact for each
// pending entry and applies birthday updates (or creates new contacts)
// through the directory service with a bounded concurrent pipeline.
//
// Example usage:
//
//	svc, err := auth.Service(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bs, err := birthsync.New(
//	    birthsync.WithStorePath("calendar.csv"),
//	    birthsync.WithDirectory(people.NewClient(svc)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Import newly exported events, skipping exact duplicates.
//	result, err := bs.Import(ctx, "birthdays.ics")
//
//	// Apply every pending entry with its chosen candidate.
//	results, err := bs.Apply(ctx, nil)
//	for r := range results {
//	    fmt.Printf("%d/%d %s\n", r.Completed, r.Total, r.Title)
//	}
package birthsync

import (
	"context"

	"github.com/agentstation/birthsync/pkg/pipeline"
	"github.com/agentstation/birthsync/pkg/reconcile"
	"github.com/agentstation/birthsync/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client ties the entry store, the reconciliation engine and the sync
// pipeline together behind one handle.
type Client interface {
	// Store exposes the authoritative entry set.
	Store() *store.Store

	// Engine exposes candidate ranking and chosen-candidate bindings.
	Engine() *reconcile.Engine

	// Import merges a calendar export into the store, skipping exact
	// (title, date) duplicates.
	Import(ctx context.Context, path string) (ImportResult, error)

	// Apply runs the batch pipeline for the given pending entry IDs, or for
	// every pending entry when ids is empty.
	Apply(ctx context.Context, ids []string) (<-chan pipeline.Result, error)

	// ApplyOne applies a single entry synchronously.
	ApplyOne(ctx context.Context, id string) error

	// Remove marks an entry Removed without any directory call.
	Remove(id string) error
}
