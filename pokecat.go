// Package pokecat is a client-side data-access layer for the PokéAPI
// catalog. It composes a per-category bounded cache tree, an identifier
// resolver with fuzzy suggestions, and an HTTP client that bootstraps every
// category's name/id roster in the background without blocking the first
// request.
//
// The library is deliberately value-type-agnostic: operations return raw
// JSON and callers supply their own decode functions, so the hundreds of
// typed record shapes stay outside this module.
package pokecat

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/catchkit/pokecat/cache"
	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/logger"
	"github.com/catchkit/pokecat/refresh"
	"github.com/catchkit/pokecat/resolver"
	"github.com/catchkit/pokecat/rest"
)

// Config holds configuration for the top-level client
type Config struct {
	// CacheSize is the shared per-category entry bound
	// default: cache.DefaultCapacity
	CacheSize int `mapstructure:"cache_size"`
	// Logger configures the built logger; ignored when Log is set
	Logger *logger.Config `mapstructure:"logger"`
	// Log injects a logger directly (tests, embedders)
	Log logger.Logger `mapstructure:"-"`
	// REST configures the transport
	REST *rest.Config `mapstructure:"rest"`
	// Refresh enables scheduled roster refresh when non-nil
	Refresh *refresh.Config `mapstructure:"refresh"`
}

// Client is the top-level entry point
type Client struct {
	log  logger.Logger
	tree *cache.Tree
	rest *rest.Client
	ref  *refresh.Refresher
}

// New creates a Client. No network traffic happens until the first request
// (or an explicit WaitUntilReady), which lazily opens the session and
// launches the roster bootstrap.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	size := cfg.CacheSize
	if size == 0 {
		size = cache.DefaultCapacity
	}

	log := cfg.Log
	if log == nil {
		var err error
		if log, err = logger.New(cfg.Logger); err != nil {
			return nil, err
		}
	}

	tree, err := cache.NewTree(size)
	if err != nil {
		return nil, err
	}
	rc, err := rest.NewClient(cfg.REST, log, tree)
	if err != nil {
		return nil, err
	}

	c := &Client{log: log, tree: tree, rest: rc}
	if cfg.Refresh != nil {
		ref, err := refresh.New(log, cfg.Refresh, rc.RefreshRosters)
		if err != nil {
			return nil, err
		}
		c.ref = ref
		ref.Start()
	}
	return c, nil
}

// Resource returns one resource by display name or numeric id: the
// identifier is validated against the category roster (when loaded), the
// cache is consulted, and only on a miss is the upstream API called and the
// result inserted.
func (c *Client) Resource(ctx context.Context, cat catalog.Category, identifier string) (json.RawMessage, error) {
	leaf, ok := c.tree.Leaf(cat)
	if !ok {
		return nil, cache.ErrUnknownCategory(cat.Name)
	}
	route := rest.ResourceRoute(cat, identifier)
	if err := resolver.Validate(leaf, identifier, route); err != nil {
		return nil, err
	}
	if data, ok := leaf.Lookup(route); ok {
		return data, nil
	}
	data, err := c.rest.Request(ctx, route)
	if err != nil {
		return nil, err
	}
	leaf.Put(route, data)
	return data, nil
}

// CachedResource is the cache-only variant of Resource: it never touches the
// network. The bool reports whether a cached value was found.
func (c *Client) CachedResource(cat catalog.Category, identifier string) (json.RawMessage, bool, error) {
	leaf, ok := c.tree.Leaf(cat)
	if !ok {
		return nil, false, cache.ErrUnknownCategory(cat.Name)
	}
	route := rest.ResourceRoute(cat, identifier)
	if err := resolver.Validate(leaf, identifier, route); err != nil {
		return nil, false, err
	}
	data, ok := leaf.Lookup(route)
	return data, ok, nil
}

// PrefetchCategory warms one category's cache from its roster, fetching at
// most parallel resources at a time. The roster must be loaded first. The
// leaf grows to hold the whole roster, matching the prefetched working set.
func (c *Client) PrefetchCategory(ctx context.Context, cat catalog.Category, parallel int) error {
	leaf, ok := c.tree.Leaf(cat)
	if !ok {
		return cache.ErrUnknownCategory(cat.Name)
	}
	if !leaf.RosterLoaded() {
		return ErrRosterNotLoaded(cat.Name)
	}
	if parallel < 1 {
		parallel = 1
	}
	if n := leaf.RosterLen(); n > leaf.Cap() {
		if err := leaf.Resize(n); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, ep := range leaf.Endpoints() {
		route := rest.ResourceRoute(cat, leaf.CanonicalIdentifier(ep))
		if _, ok := leaf.Peek(route); ok {
			continue
		}
		g.Go(func() error {
			data, err := c.rest.Request(ctx, route)
			if err != nil {
				return err
			}
			leaf.Put(route, data)
			return nil
		})
	}
	return g.Wait()
}

// SaveCategory persists one category's cached entries to dir/<category>.json
func (c *Client) SaveCategory(cat catalog.Category, dir string) error {
	leaf, ok := c.tree.Leaf(cat)
	if !ok {
		return cache.ErrUnknownCategory(cat.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, cat.Name+".json"))
	if err != nil {
		return err
	}
	defer f.Close()
	return leaf.Save(f)
}

// RestoreCategory loads dir/<category>.json back into the category's cache.
// A nil decode keeps the raw JSON as-is; callers with typed records pass the
// category's decode function to re-validate each value.
func (c *Client) RestoreCategory(cat catalog.Category, dir string, decode cache.DecodeFunc[json.RawMessage]) error {
	leaf, ok := c.tree.Leaf(cat)
	if !ok {
		return cache.ErrUnknownCategory(cat.Name)
	}
	if decode == nil {
		decode = rawDecode
	}
	f, err := os.Open(filepath.Join(dir, cat.Name+".json"))
	if err != nil {
		return err
	}
	defer f.Close()
	return leaf.Restore(f, decode)
}

func rawDecode(data []byte) (json.RawMessage, error) {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out, nil
}

// FetchBinary downloads a binary asset (sprite, cry) through the transport's
// LRU asset cache
func (c *Client) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	return c.rest.FetchBinary(ctx, url)
}

// Ping measures upstream latency
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	return c.rest.Ping(ctx)
}

// WaitUntilReady blocks until every category roster has been bootstrapped,
// starting the bootstrap if it has not run yet
func (c *Client) WaitUntilReady(ctx context.Context) error {
	return c.rest.WaitUntilReady(ctx)
}

// RefreshRosters reloads every category roster immediately
func (c *Client) RefreshRosters(ctx context.Context) error {
	return c.rest.RefreshRosters(ctx)
}

// SetCacheSize pushes a new shared capacity to every category cache;
// existing overflow is pruned lazily on each cache's next insert
func (c *Client) SetCacheSize(n int) error {
	return c.tree.SetSize(n)
}

// SetDomainCacheSize overrides the capacity for one domain only
func (c *Client) SetDomainCacheSize(d catalog.Domain, n int) error {
	return c.tree.SetDomainSize(d, n)
}

// Cache exposes the underlying cache tree
func (c *Client) Cache() *cache.Tree {
	return c.tree
}

// State returns the transport lifecycle state
func (c *Client) State() rest.State {
	return c.rest.State()
}

// Close stops the scheduled refresh, cancels pending bootstrap tasks, tears
// down the session and flushes the logger. Terminal.
func (c *Client) Close() error {
	if c.ref != nil {
		c.ref.Close()
	}
	return multierr.Append(c.rest.Close(), c.log.Sync())
}
