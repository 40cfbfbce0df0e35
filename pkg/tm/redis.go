package tm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

// Redis is a translation memory kept in one Redis hash per language.
type Redis struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedis wraps an existing client. Close does not close it.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Redis{client: client, prefix: o.prefix}
}

// OpenRedis connects to url, retrying with linear backoff. Supports the
// redis:// and rediss:// schemes.
func OpenRedis(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrParseURL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrParseURL, err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.DialTimeout = o.dialTimeout

	client, err := connect(ctx, redisOpts, o.retryAttempts, o.retryInterval)
	if err != nil {
		return nil, err
	}
	return &Redis{client: client, prefix: o.prefix, owned: true}, nil
}

func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if waitErr := wait(ctx, time.Duration(i+1)*interval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr)
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (r *Redis) key(lang string) string {
	return r.prefix + ":tm:" + lang
}

func (r *Redis) Get(ctx context.Context, lang, source string) (string, error) {
	s, err := r.client.HGet(ctx, r.key(lang), source).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Join(ErrQuery, err)
	}
	return s, nil
}

func (r *Redis) Put(ctx context.Context, lang, source, target string) error {
	if err := r.client.HSet(ctx, r.key(lang), source, target).Err(); err != nil {
		return errors.Join(ErrQuery, err)
	}
	return nil
}

func (r *Redis) putAll(ctx context.Context, lang string, c *catalog.Catalog) (int, error) {
	if c.Len() == 0 {
		return 0, nil
	}
	values := make([]any, 0, 2*c.Len())
	for source, target := range c.All() {
		values = append(values, source, target)
	}
	if err := r.client.HSet(ctx, r.key(lang), values...).Err(); err != nil {
		return 0, errors.Join(ErrQuery, err)
	}
	return len(values) / 2, nil
}

// Clear removes every translation stored for lang.
func (r *Redis) Clear(ctx context.Context, lang string) error {
	if err := r.client.Del(ctx, r.key(lang)).Err(); err != nil {
		return errors.Join(ErrQuery, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
