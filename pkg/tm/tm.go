package tm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

// Memory stores translations per language.
type Memory interface {
	// Get returns ErrNotFound when source has no translation.
	Get(ctx context.Context, lang, source string) (string, error)
	Put(ctx context.Context, lang, source, target string) error
	Close() error
}

// batchPutter is implemented by backends that can store many entries in one
// round trip.
type batchPutter interface {
	putAll(ctx context.Context, lang string, c *catalog.Catalog) (int, error)
}

// Import copies every translation of c into mem under lang.
func Import(ctx context.Context, mem Memory, lang string, c *catalog.Catalog) (int, error) {
	if b, ok := mem.(batchPutter); ok {
		return b.putAll(ctx, lang, c)
	}
	n := 0
	for source, target := range c.All() {
		if err := mem.Put(ctx, lang, source, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Lookup adapts mem to catalog.Lookup. Backend failures are logged and
// treated as misses so a flaky memory never aborts a merge.
func Lookup(ctx context.Context, mem Memory, lang string, log *slog.Logger) catalog.Lookup {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return catalog.LookupFunc(func(text string) (string, bool) {
		s, err := mem.Get(ctx, lang, text)
		switch {
		case err == nil:
			return s, s != ""
		case errors.Is(err, ErrNotFound):
		default:
			log.WarnContext(ctx, "translation memory lookup failed",
				slog.String("lang", lang),
				slog.String("error", err.Error()))
		}
		return "", false
	})
}

// Option configures a translation memory.
type Option func(*options)

type options struct {
	log           *slog.Logger
	prefix        string
	busyTimeout   time.Duration
	retryAttempts int
	retryInterval time.Duration
	dialTimeout   time.Duration
	poolSize      int
}

func defaultOptions() *options {
	return &options{
		log:           slog.New(slog.DiscardHandler),
		prefix:        "xmlpo",
		busyTimeout:   10 * time.Second,
		retryAttempts: 3,
		retryInterval: 2 * time.Second,
		dialTimeout:   5 * time.Second,
		poolSize:      10,
	}
}

// WithLogger sets the logger for migrations and backend warnings.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithPrefix sets the Redis key prefix.
// Default: "xmlpo"
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithBusyTimeout sets the SQLite busy timeout.
// Default: 10 seconds
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// WithRetry configures Redis connection retries with linear backoff.
// Default: 3 attempts, 2 second base interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithDialTimeout sets the Redis dial timeout.
// Default: 5 seconds
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithPoolSize sets the Redis connection pool size.
// Default: 10
func WithPoolSize(n int) Option {
	return func(o *options) {
		o.poolSize = n
	}
}
