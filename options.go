package birthsync

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/birthsync/pkg/directory"
	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
	"github.com/agentstation/birthsync/pkg/pipeline"
	"github.com/agentstation/birthsync/pkg/reconcile"
)

// DefaultStorePath is where entries persist when no path is configured,
// matching the file the calendar export tooling writes.
const DefaultStorePath = "calendar.csv"

// Option is a function that configures a birthsync instance.
type Option func(*options) error

// options holds the resolved configuration for a client.
type options struct {
	storePath string
	dir       directory.Directory
	contacts  []directory.Contact
	workers   int
	threshold float64
	limit     int
	logger    *zerolog.Logger
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{
		storePath: DefaultStorePath,
		workers:   pipeline.DefaultWorkers,
		threshold: reconcile.DefaultThreshold,
		limit:     reconcile.DefaultLimit,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithStorePath configures the persisted entry file location.
func WithStorePath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("store path cannot be empty")
		}
		o.storePath = path
		return nil
	}
}

// WithDirectory configures the authenticated directory service client.
// Without one, import/list/remove still work but apply operations fail.
func WithDirectory(dir directory.Directory) Option {
	return func(o *options) error {
		o.dir = dir
		return nil
	}
}

// WithContacts supplies a pre-fetched contact universe, skipping the
// ListContacts call during construction.
func WithContacts(contacts []directory.Contact) Option {
	return func(o *options) error {
		o.contacts = contacts
		return nil
	}
}

// WithWorkers bounds the number of concurrent directory calls during apply.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.New("worker count must be positive")
		}
		o.workers = n
		return nil
	}
}

// WithThreshold sets the minimum score a match candidate must strictly exceed.
func WithThreshold(threshold float64) Option {
	return func(o *options) error {
		o.threshold = threshold
		return nil
	}
}

// WithLimit caps the candidate list length per entry.
func WithLimit(limit int) Option {
	return func(o *options) error {
		if limit <= 0 {
			return errors.New("candidate limit must be positive")
		}
		o.limit = limit
		return nil
	}
}

// WithLogger sets the logger used across store, engine and pipeline.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}
