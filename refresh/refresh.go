// Package refresh periodically re-runs the roster bootstrap on a cron
// schedule. Rosters are replaced wholesale, so a refresh is safe to fire at
// any point in the client's life; the upstream catalog is append-only, which
// makes an infrequent full reload sufficient.
package refresh

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/catchkit/pokecat/logger"
)

// RefreshFunc reloads every category roster; rest.Client.RefreshRosters fits
type RefreshFunc func(ctx context.Context) error

// Refresher runs a RefreshFunc on a cron schedule with panic recovery
type Refresher struct {
	log     logger.Logger
	cron    *cron.Cron
	fn      RefreshFunc
	timeout time.Duration
}

// New creates a Refresher; the schedule is not running until Start
// A nil config selects the defaults; zero-value fields are merged with defaults
func New(log logger.Logger, cfg *Config, fn RefreshFunc) (*Refresher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if cfg.Spec == "" {
			cfg.Spec = defaults.Spec
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = defaults.Timeout
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrNilRefreshFunc
	}
	if log == nil {
		log = logger.Nop()
	}

	r := &Refresher{
		log:     log,
		cron:    cron.New(),
		fn:      fn,
		timeout: cfg.Timeout,
	}
	if _, err := r.cron.AddFunc(cfg.Spec, r.run); err != nil {
		return nil, ErrInvalidSpec(cfg.Spec, err)
	}
	return r, nil
}

// Start begins the schedule
func (r *Refresher) Start() {
	r.cron.Start()
}

// Close stops the schedule and waits for a running refresh to complete
// It can be called multiple times safely
func (r *Refresher) Close() {
	<-r.cron.Stop().Done()
}

// run executes one refresh with timeout and panic recovery
func (r *Refresher) run() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("roster refresh panicked",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.fn(ctx); err != nil {
		r.log.Warn("roster refresh failed", zap.Error(err))
		return
	}
	r.log.Info("roster refresh completed", zap.Duration("took", time.Since(start)))
}
