package birthsync

import (
	"context"

	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/pipeline"
	"github.com/agentstation/birthsync/pkg/reconcile"
	"github.com/agentstation/birthsync/pkg/store"
)

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	store   *store.Store
	engine  *reconcile.Engine
	pipe    *pipeline.Pipeline
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	s, err := store.Load(options.storePath, store.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	contacts := options.contacts
	if contacts == nil && options.dir != nil {
		contacts, err = options.dir.ListContacts(context.Background())
		if err != nil {
			return nil, err
		}
	}

	c := &client{
		options: options,
		store:   s,
		engine: reconcile.NewEngine(s, contacts,
			reconcile.WithThreshold(options.threshold),
			reconcile.WithLimit(options.limit),
		),
	}
	if options.dir != nil {
		c.pipe = pipeline.New(s, options.dir,
			pipeline.WithWorkers(options.workers),
			pipeline.WithLogger(options.logger),
		)
	}
	return c, nil
}

// Store exposes the authoritative entry set.
func (c *client) Store() *store.Store {
	return c.store
}

// Engine exposes candidate ranking and chosen-candidate bindings.
func (c *client) Engine() *reconcile.Engine {
	return c.engine
}

// Remove marks an entry Removed without any directory call. The removal is
// terminal and persisted immediately.
func (c *client) Remove(id string) error {
	return c.store.MarkRemoved(id)
}

// selection resolves entry IDs into pipeline items with their chosen
// candidates. Empty ids means every pending entry.
func (c *client) selection(ids []string) ([]pipeline.Item, error) {
	if len(ids) == 0 {
		for _, e := range c.store.Pending() {
			ids = append(ids, e.ID)
		}
	}

	items := make([]pipeline.Item, 0, len(ids))
	for _, id := range ids {
		entry, err := c.store.Get(id)
		if err != nil {
			return nil, err
		}
		if entry.State != store.Pending {
			return nil, errors.NewTransitionError(id, entry.State.String(), store.Done.String())
		}
		chosen, err := c.engine.Chosen(id)
		if err != nil {
			return nil, err
		}
		items = append(items, pipeline.Item{Entry: entry, Candidate: chosen})
	}
	return items, nil
}

// Apply runs the batch pipeline for the given pending entry IDs.
func (c *client) Apply(ctx context.Context, ids []string) (<-chan pipeline.Result, error) {
	if c.pipe == nil {
		return nil, errors.NewDirectoryError("apply", "", errors.New("no directory configured"))
	}
	items, err := c.selection(ids)
	if err != nil {
		return nil, err
	}
	return c.pipe.Apply(ctx, items), nil
}

// ApplyOne applies a single entry synchronously, then commits its Done state.
func (c *client) ApplyOne(ctx context.Context, id string) error {
	if c.pipe == nil {
		return errors.NewDirectoryError("apply", "", errors.New("no directory configured"))
	}
	items, err := c.selection([]string{id})
	if err != nil {
		return err
	}
	return c.pipe.ApplyOne(ctx, items[0])
}
