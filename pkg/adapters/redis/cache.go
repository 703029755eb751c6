package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a cached row lives unless WithTTL says otherwise.
	DefaultTTL = 10 * time.Minute
	// DefaultPrefix namespaces every key written by the cache.
	DefaultPrefix = "arbor:"
)

// Cache is a read-through cache in front of a ports.Dataset.
//
// Only raw rows are cached (nodes, links, checks, alternates, catalog
// lookups). Absent rows are cached too, as JSON null. When Redis fails the
// call falls through to the origin and the failure is logged.
type Cache struct {
	origin ports.Dataset
	client *backend.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// Option configures the Cache.
type Option func(*Cache)

// WithTTL sets the expiration of cached entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger used to report Redis failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New connects to addr and wraps origin.
func New(addr string, origin ports.Dataset, opts ...Option) *Cache {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), origin, opts...)
}

// NewFromClient wraps origin using an existing client.
func NewFromClient(client *backend.Client, origin ports.Dataset, opts ...Option) *Cache {
	c := &Cache{
		origin: origin,
		client: client,
		ttl:    DefaultTTL,
		prefix: DefaultPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", domain.ErrSourceUnavailable, err)
	}
	return nil
}

// Flush drops every key under the cache prefix. Used after the origin reloads.
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func through[T any](ctx context.Context, c *Cache, key string, load func() (T, error)) (T, error) {
	full := c.prefix + key

	raw, err := c.client.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "key", full)
	case !errors.Is(err, backend.Nil):
		c.logger.Warn("redis read failed", "key", full, "error", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.client.Set(ctx, full, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis write failed", "key", full, "error", err)
	}
	return v, nil
}

// GetNode implements ports.GraphDataSource.
func (c *Cache) GetNode(ctx context.Context, key domain.NodeKey) (*domain.DialogueNode, error) {
	return through(ctx, c, "node:"+key.String(), func() (*domain.DialogueNode, error) {
		return c.origin.GetNode(ctx, key)
	})
}

// GetOutboundEdges implements ports.GraphDataSource.
func (c *Cache) GetOutboundEdges(ctx context.Context, key domain.NodeKey) ([]domain.DialogueEdge, error) {
	return through(ctx, c, "links:"+key.String(), func() ([]domain.DialogueEdge, error) {
		return c.origin.GetOutboundEdges(ctx, key)
	})
}

// GetCheck implements ports.GraphDataSource.
func (c *Cache) GetCheck(ctx context.Context, key domain.NodeKey) (*domain.SkillCheck, error) {
	return through(ctx, c, "check:"+key.String(), func() (*domain.SkillCheck, error) {
		return c.origin.GetCheck(ctx, key)
	})
}

// GetAlternates implements ports.GraphDataSource.
func (c *Cache) GetAlternates(ctx context.Context, key domain.NodeKey) ([]domain.Alternate, error) {
	return through(ctx, c, "alternates:"+key.String(), func() ([]domain.Alternate, error) {
		return c.origin.GetAlternates(ctx, key)
	})
}

// ListConditionalNodes implements ports.GraphDataSource.
func (c *Cache) ListConditionalNodes(ctx context.Context, conversationID int) ([]domain.DialogueNode, error) {
	return through(ctx, c, fmt.Sprintf("conditional:%d", conversationID), func() ([]domain.DialogueNode, error) {
		return c.origin.ListConditionalNodes(ctx, conversationID)
	})
}

// ListActors implements ports.Catalog.
func (c *Cache) ListActors(ctx context.Context) ([]string, error) {
	return through(ctx, c, "actors", func() ([]string, error) {
		return c.origin.ListActors(ctx)
	})
}

// SearchDialogues implements ports.Catalog.
func (c *Cache) SearchDialogues(ctx context.Context, actor, keyword string) ([]domain.DialogueMatch, error) {
	key := fmt.Sprintf("search:%q:%q", strings.ToLower(strings.TrimSpace(actor)), keyword)
	return through(ctx, c, key, func() ([]domain.DialogueMatch, error) {
		return c.origin.SearchDialogues(ctx, actor, keyword)
	})
}
