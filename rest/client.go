package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/logger"
	"github.com/catchkit/pokecat/routine"
)

// RosterSink receives the decoded roster listing of one category. The cache
// tree implements it; the client never touches cache internals.
type RosterSink interface {
	LoadDocuments(cat catalog.Category, docs []NamedResource) error
}

// State is the connection lifecycle state of a Client
type State int

const (
	// StateUnconnected: no request made yet, bootstrap not launched
	StateUnconnected State = iota
	// StateConnecting: session open, roster bootstrap tasks in flight
	StateConnecting
	// StateReady: every bootstrap task has settled
	StateReady
	// StateClosed: terminal; all pending tasks cancelled
	StateClosed
)

var stateNames = map[State]string{
	StateUnconnected: "unconnected",
	StateConnecting:  "connecting",
	StateReady:       "ready",
	StateClosed:      "closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "invalid"
}

// bootstrapTask tracks one in-flight roster load so Close can cancel it and
// await its completion deterministically
type bootstrapTask struct {
	cat    catalog.Category
	cancel context.CancelFunc
	done   chan struct{}
}

// Client owns the transport session, schedules and tracks the background
// roster bootstrap, and exposes Request, FetchBinary and Ping.
//
// The first Request (or FetchBinary) lazily moves the client from
// Unconnected to Connecting and launches one roster task per catalog
// category, exactly once. Close cancels everything pending and is terminal.
type Client struct {
	cfg    *Config
	log    logger.Logger
	httpc  *http.Client
	sink   RosterSink
	assets *lru.Cache[string, []byte]
	runner routine.Runner

	mu    sync.Mutex
	state State
	tasks map[catalog.Category]*bootstrapTask
	ready chan struct{}
}

// NewClient creates a Client feeding rosters into sink
// A nil config selects the defaults; zero-value fields are merged with defaults
func NewClient(cfg *Config, log logger.Logger, sink RosterSink) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.merge(DefaultConfig())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	if log == nil {
		log = logger.Nop()
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.Timeout}
	}

	assets, err := lru.New[string, []byte](cfg.AssetCacheSize)
	if err != nil {
		return nil, ErrInvalidAssetCacheSize(cfg.AssetCacheSize)
	}

	return &Client{
		cfg:    cfg,
		log:    log,
		httpc:  httpc,
		sink:   sink,
		assets: assets,
		runner: routine.New(log),
		tasks:  make(map[catalog.Category]*bootstrapTask),
	}, nil
}

// State returns the current lifecycle state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// connect opens the session and launches the roster bootstrap exactly once.
// It is a no-op in Connecting and Ready, and fails once the client is closed.
func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateClosed:
		return ErrClientClosed
	case StateUnconnected:
		c.state = StateConnecting
		c.ready = make(chan struct{})
		c.launchBootstrapLocked()
	}
	return nil
}

// launchBootstrapLocked schedules one roster task per category plus a join
// goroutine that flips Connecting to Ready when all of them have settled.
// Callers must hold c.mu.
func (c *Client) launchBootstrapLocked() {
	cats := catalog.Categories()
	pending := make([]*bootstrapTask, 0, len(cats))
	for _, cat := range cats {
		cat := cat
		ctx, cancel := context.WithCancel(context.Background())
		task := &bootstrapTask{cat: cat, cancel: cancel, done: make(chan struct{})}
		c.tasks[cat] = task
		pending = append(pending, task)
		c.runner.GoCtx(ctx, cat.Name+"-roster", func(ctx context.Context) {
			defer close(task.done)
			defer cancel()
			if err := c.loadRoster(ctx, cat); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Warn("roster bootstrap failed",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
			}
		})
	}

	ready := c.ready
	c.runner.GoNamed("bootstrap-join", func() {
		for _, task := range pending {
			<-task.done
		}
		c.mu.Lock()
		if c.state == StateConnecting {
			c.state = StateReady
			c.log.Info("roster bootstrap settled", zap.Int("categories", len(pending)))
		}
		c.mu.Unlock()
		close(ready)
	})
}

// loadRoster fetches one category listing and applies it to the sink. The
// listing is decoded in full before dispatch, so a cancelled task never
// leaves a roster half-populated.
func (c *Client) loadRoster(ctx context.Context, cat catalog.Category) error {
	raw, err := c.do(ctx, ListingRoute(cat, c.cfg.PageLimit))
	if err != nil {
		return err
	}
	var page listingPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return ErrDecodeListing(cat.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sink.LoadDocuments(cat, page.Results); err != nil {
		return err
	}
	c.log.Debug("roster loaded",
		zap.String("category", cat.Name),
		zap.Int("entries", len(page.Results)),
	)
	return nil
}

// Request performs a catalog request and returns the raw JSON body.
// The first call triggers the roster bootstrap. Non-2xx responses surface
// as *HTTPError; transient failures propagate without retries.
func (c *Client) Request(ctx context.Context, route Route) (json.RawMessage, error) {
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c.do(ctx, route)
}

func (c *Client) do(ctx context.Context, route Route) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, route.Method, route.URL(c.cfg.BaseURL), nil)
	if err != nil {
		return nil, ErrRequest(route, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, ErrRequest(route, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), route)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrRequest(route, err)
	}
	return json.RawMessage(body), nil
}

// FetchBinary downloads a binary asset (sprite, cry) from an absolute URL.
// Results are LRU-cached. A non-2xx response or a content type outside the
// allow-list yields *AssetError.
func (c *Client) FetchBinary(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.connect(); err != nil {
		return nil, err
	}
	if data, ok := c.assets.Get(rawURL); ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &AssetError{URL: rawURL, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &AssetError{URL: rawURL, Reason: err.Error()}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AssetError{
			URL:         rawURL,
			Status:      resp.StatusCode,
			ContentType: contentType,
			Reason:      http.StatusText(resp.StatusCode),
		}
	}
	if !slices.Contains(c.cfg.AllowedAssetTypes, contentType) {
		return nil, &AssetError{
			URL:         rawURL,
			Status:      resp.StatusCode,
			ContentType: contentType,
			Reason:      "content type not allowed",
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AssetError{URL: rawURL, Status: resp.StatusCode, ContentType: contentType, Reason: err.Error()}
	}
	c.assets.Add(rawURL, data)
	return data, nil
}

// Ping measures upstream latency with a no-op request
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.Request(ctx, PingRoute()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// WaitUntilReady blocks until the roster bootstrap has settled, triggering
// it first if necessary
func (c *Client) WaitUntilReady(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}

	c.mu.Lock()
	state, ready := c.state, c.ready
	c.mu.Unlock()
	if state == StateReady {
		return nil
	}

	select {
	case <-ready:
		if c.State() == StateClosed {
			return ErrClientClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshRosters reloads every category roster synchronously. Each roster is
// replaced wholesale, so a refresh is safe at any point in the client's life.
func (c *Client) RefreshRosters(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(8)
	for _, cat := range catalog.Categories() {
		cat := cat
		g.Go(func() error {
			return c.loadRoster(ctx, cat)
		})
	}
	return g.Wait()
}

// Close cancels every pending bootstrap task, waits for all background work
// to settle and tears down the session. It is terminal and safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	pending := make([]*bootstrapTask, 0, len(c.tasks))
	for _, task := range c.tasks {
		pending = append(pending, task)
	}
	c.mu.Unlock()

	for _, task := range pending {
		task.cancel()
	}
	c.runner.Wait()
	c.httpc.CloseIdleConnections()
	c.log.Info("client closed", zap.Int("cancelled_tasks", len(pending)))
	return nil
}
