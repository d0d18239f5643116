// Package routine provides panic-safe goroutine execution.
//
// Background work in this library (roster bootstrap tasks, scheduled
// refreshes) is always launched through a Runner so a panic in one task is
// logged with its stack instead of crashing the host process, and so the
// owner can join every task it started.
package routine

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/catchkit/pokecat/logger"
)

// Runner launches goroutines with panic recovery and tracks them for joining
type Runner interface {
	// Go runs fn in a new goroutine with panic recovery
	Go(fn func())

	// GoNamed runs fn in a new goroutine; name identifies the task in logs
	GoNamed(name string, fn func())

	// GoCtx runs fn with ctx in a new goroutine; name identifies the task in logs
	GoCtx(ctx context.Context, name string, fn func(ctx context.Context))

	// Wait blocks until every goroutine started by this runner has returned
	Wait()
}

type runner struct {
	log logger.Logger
	wg  sync.WaitGroup
}

// New creates a Runner that reports panics through log
func New(log logger.Logger) Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &runner{log: log}
}

func (r *runner) Go(fn func()) {
	r.GoNamed("", fn)
}

func (r *runner) GoNamed(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer recoverToLog(r.log, name)
		fn()
	}()
}

func (r *runner) GoCtx(ctx context.Context, name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer recoverToLog(r.log, name)
		fn(ctx)
	}()
}

func (r *runner) Wait() {
	r.wg.Wait()
}

// Go runs fn in an untracked goroutine with panic recovery
func Go(log logger.Logger, name string, fn func()) {
	go func() {
		defer recoverToLog(log, name)
		fn()
	}()
}

func recoverToLog(log logger.Logger, name string) {
	if rec := recover(); rec != nil {
		fields := []zap.Field{
			zap.Any("panic", rec),
			zap.String("stack", string(debug.Stack())),
		}
		if name != "" {
			fields = append([]zap.Field{zap.String("routine", name)}, fields...)
		}
		log.Error("goroutine panicked", fields...)
	}
}
