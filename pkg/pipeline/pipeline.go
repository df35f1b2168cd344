// Package pipeline applies batches of (entry, chosen candidate) pairs
// against the external directory with a bounded pool of concurrent workers,
// streaming one result per pair plus monotonic progress to the caller.
package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/birthsync/pkg/directory"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
	"github.com/agentstation/birthsync/pkg/reconcile"
	"github.com/agentstation/birthsync/pkg/store"
)

// DefaultWorkers bounds outstanding directory calls. The directory service
// rate-limits implicitly; a small pool keeps us under it without backoff.
const DefaultWorkers = 4

// Item is one unit of work: a pending entry and the candidate to apply.
type Item struct {
	Entry     store.Entry
	Candidate reconcile.Candidate
}

// Result is the outcome of one apply attempt. Err nil means the entry was
// applied and transitioned to Done. Completed increases monotonically across
// the stream and reaches Total exactly once, failures included.
type Result struct {
	EntryID   string
	Title     string
	Err       error
	Completed int
	Total     int
}

// Pipeline dispatches items to a bounded worker pool. Each worker performs
// the blocking directory calls; the store mutation and save happen before a
// success result is emitted, so the persisted file never claims Done unless
// the external call actually succeeded.
type Pipeline struct {
	store   *store.Store
	dir     directory.Directory
	workers int
	logger  *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger for per-item diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline over the given store and directory.
func New(s *store.Store, dir directory.Directory, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   s,
		dir:     dir,
		workers: DefaultWorkers,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// outcome is a worker's raw result before progress accounting.
type outcome struct {
	entryID string
	title   string
	err     error
}

// Apply dispatches all items and returns the result stream. The channel is
// closed after exactly len(items) results. Results may arrive out of input
// order when the pool has more than one worker, but each item yields exactly
// one result.
//
// Cancelling ctx stops new dispatches; calls already in flight run to
// completion, since aborting mid-call risks a half-applied external
// mutation. Undispatched items still produce a result (ErrCanceled) so the
// progress counter always reaches Total.
func (p *Pipeline) Apply(ctx context.Context, items []Item) <-chan Result {
	total := len(items)
	raw := make(chan outcome, total)
	out := make(chan Result, total)

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)

	go func() {
		for _, item := range items {
			if ctx.Err() != nil {
				raw <- outcome{entryID: item.Entry.ID, title: item.Entry.Title, err: errors.ErrCanceled}
				continue
			}

			// Acquire before spawning: dispatch order follows submission
			// order, and a pool of one applies items strictly in sequence.
			sem <- struct{}{}
			if ctx.Err() != nil {
				<-sem
				raw <- outcome{entryID: item.Entry.ID, title: item.Entry.Title, err: errors.ErrCanceled}
				continue
			}

			wg.Add(1)
			go func(item Item) {
				defer wg.Done()
				defer func() { <-sem }()
				raw <- p.applyItem(ctx, item)
			}(item)
		}

		wg.Wait()
		close(raw)
	}()

	// A single collector serializes progress accounting so Completed is
	// monotonic across the stream.
	go func() {
		defer close(out)
		completed := 0
		for o := range raw {
			completed++
			out <- Result{
				EntryID:   o.entryID,
				Title:     o.title,
				Err:       o.err,
				Completed: completed,
				Total:     total,
			}
		}
	}()

	return out
}

// ApplyOne performs the two-call apply for a single pair synchronously, for
// callers confirming one entry without staging a batch.
func (p *Pipeline) ApplyOne(ctx context.Context, item Item) error {
	o := p.applyItem(ctx, item)
	return o.err
}

// applyItem performs the external call(s) for one item and, on success,
// commits the Done transition before reporting.
func (p *Pipeline) applyItem(ctx context.Context, item Item) outcome {
	o := outcome{entryID: item.Entry.ID, title: item.Entry.Title}

	// In-flight calls run to completion even if the batch is cancelled; a
	// partial external mutation is worse than a slightly late stop.
	callCtx := context.WithoutCancel(ctx)

	if err := p.call(callCtx, item); err != nil {
		p.logger.Warn().
			Err(err).
			Str("entry_id", item.Entry.ID).
			Str("title", item.Entry.Title).
			Msg("apply failed, entry stays pending")
		o.err = err
		return o
	}

	if err := p.store.MarkDone(item.Entry.ID); err != nil {
		// The directory call succeeded but the state change did not commit.
		// Surfacing the persistence error beats pretending the entry is Done.
		o.err = err
		return o
	}

	p.logger.Info().
		Str("entry_id", item.Entry.ID).
		Str("title", item.Entry.Title).
		Str("contact", item.Candidate.Name).
		Bool("created", item.Candidate.IsCreate()).
		Msg("entry applied")
	return o
}

// call issues the external operation for the item's candidate kind. Only the
// month and day are sent: the source date's year is an event year, not a
// birth year, and the directory's birthday field is year-optional.
func (p *Pipeline) call(ctx context.Context, item Item) error {
	month, day := item.Entry.Date.Month, item.Entry.Date.Day

	if item.Candidate.IsCreate() {
		return p.dir.CreateContact(ctx, item.Entry.Title, month, day)
	}

	details, err := p.dir.GetContactDetails(ctx, item.Candidate.Ref)
	if err != nil {
		return err
	}
	return p.dir.UpdateBirthday(ctx, item.Candidate.Ref, details.ETag, month, day)
}
