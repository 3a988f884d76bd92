// Package catalog caches the amenity list shown in the filters popover.
// Stale entries are served immediately and refreshed in the background.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/refresh"
)

const cacheKey = "catalog:amenities"

type Source interface {
	Amenities(ctx context.Context) ([]hbnb.Amenity, error)
}

// KV is the shared cache. *redisx.Client implements it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
}

type Options struct {
	StaleAfter time.Duration
	// TTL bounds how long the shared copy lives in KV.
	TTL    time.Duration
	KV     KV
	Logger *slog.Logger
}

type envelope struct {
	Amenities []hbnb.Amenity `json:"amenities"`
	FetchedAt time.Time      `json:"fetched_at"`
}

type Catalog struct {
	src  Source
	opts Options
	log  *slog.Logger
	bg   *refresh.Refresher

	mu     sync.RWMutex
	cached *envelope
}

func New(src Source, opts Options) *Catalog {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 5 * time.Minute
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Catalog{src: src, opts: opts, log: opts.Logger.With("component", "catalog")}
	c.bg = refresh.New(1, 1, 15*time.Second, func(ctx context.Context, _ refresh.Job) {
		if _, err := c.fetch(ctx); err != nil {
			c.log.Warn("amenity catalog refresh failed", "error", err)
		}
	})
	return c
}

// Amenities returns the cached list, fetching synchronously only when
// nothing is cached locally or in KV.
func (c *Catalog) Amenities(ctx context.Context) ([]hbnb.Amenity, error) {
	env := c.local()
	if env == nil {
		env = c.shared(ctx)
	}
	if env == nil {
		return c.fetch(ctx)
	}
	if time.Since(env.FetchedAt) > c.opts.StaleAfter {
		c.bg.Enqueue(refresh.Job{Key: cacheKey})
	}
	return append([]hbnb.Amenity(nil), env.Amenities...), nil
}

func (c *Catalog) Close() { c.bg.Close() }

func (c *Catalog) local() *envelope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cached
}

func (c *Catalog) shared(ctx context.Context) *envelope {
	if c.opts.KV == nil {
		return nil
	}
	val, err := c.opts.KV.Get(ctx, cacheKey)
	if err != nil || val == "" {
		return nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(val), &env); err != nil {
		c.log.Warn("discarding unreadable catalog entry", "error", err)
		return nil
	}
	c.store(&env)
	return &env
}

func (c *Catalog) fetch(ctx context.Context) ([]hbnb.Amenity, error) {
	list, err := c.src.Amenities(ctx)
	if err != nil {
		return nil, err
	}
	env := &envelope{Amenities: list, FetchedAt: time.Now()}
	c.store(env)
	if c.opts.KV != nil {
		b, _ := json.Marshal(env)
		if err := c.opts.KV.Set(ctx, cacheKey, string(b), c.opts.TTL); err != nil {
			c.log.Warn("catalog not shared", "error", err)
		}
	}
	return append([]hbnb.Amenity(nil), list...), nil
}

func (c *Catalog) store(env *envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = env
}
