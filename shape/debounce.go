package shape

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opwrap/opwrap/op"
)

// ErrCanceled is returned to waiters when a pending debounced call is
// dropped with Cancel.
var ErrCanceled = errors.New("shape: debounced call canceled")

// DebounceConfig configures the debounce controller.
type DebounceConfig struct {
	// Delay is the quiet period that must elapse after the last call
	// before the operation runs.
	// Default: 250ms
	Delay time.Duration
}

// Debouncer collapses a burst of calls per key into a single trailing
// invocation.
//
// Each call cancels any invocation already scheduled for its key and
// schedules its own operation one Delay later, so only the most recent
// call's operation ever executes. Every caller superseded inside a burst
// blocks until that one run settles and receives its result. Keys are
// independent; within a key, state transitions follow call order.
type Debouncer[T any] struct {
	config DebounceConfig

	mu      sync.Mutex
	pending map[string]*pendingRun[T]
}

type pendingRun[T any] struct {
	// gen invalidates stale timers: a timer that lost the race to a
	// newer call finds its generation superseded and does nothing.
	gen       uint64
	timer     *time.Timer
	operation op.Operation[T]
	ctx       context.Context

	done   chan struct{}
	result T
	err    error
}

// NewDebouncer creates a new debounce controller.
func NewDebouncer[T any](config DebounceConfig) *Debouncer[T] {
	// Apply defaults
	if config.Delay <= 0 {
		config.Delay = 250 * time.Millisecond
	}

	return &Debouncer[T]{
		config:  config,
		pending: make(map[string]*pendingRun[T]),
	}
}

// Do schedules the operation for key and blocks until the run that finally
// fires settles. If later calls supersede this one, the caller still
// receives the final run's outcome.
//
// Cancelling ctx stops this caller's wait only; the scheduled run and any
// other waiters are unaffected. The fired operation runs with a
// non-cancelable context derived from the most recent caller's.
func (d *Debouncer[T]) Do(ctx context.Context, key string, operation op.Operation[T]) (T, error) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		p = &pendingRun[T]{done: make(chan struct{})}
		d.pending[key] = p
	} else {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.operation = operation
	p.ctx = context.WithoutCancel(ctx)
	p.timer = time.AfterFunc(d.config.Delay, func() {
		d.fire(key, p, gen)
	})
	d.mu.Unlock()

	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Flush runs the pending call for key immediately, if any, and reports
// whether one fired. Waiters receive the result as usual.
func (d *Debouncer[T]) Flush(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	p.timer.Stop()
	p.gen++ // invalidate the scheduled timer
	delete(d.pending, key)
	run, ctx := p.operation, p.ctx
	d.mu.Unlock()

	p.result, p.err = run(ctx)
	close(p.done)
	return true
}

// Cancel drops the pending call for key, if any, failing its waiters with
// ErrCanceled. Reports whether a call was dropped.
func (d *Debouncer[T]) Cancel(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	p.timer.Stop()
	p.gen++
	delete(d.pending, key)
	d.mu.Unlock()

	p.err = ErrCanceled
	close(p.done)
	return true
}

// Pending reports whether a call is currently scheduled for key.
func (d *Debouncer[T]) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

func (d *Debouncer[T]) fire(key string, p *pendingRun[T], gen uint64) {
	d.mu.Lock()
	if current, ok := d.pending[key]; !ok || current != p || p.gen != gen {
		// Superseded by a newer call, a Flush, or a Cancel.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	run, ctx := p.operation, p.ctx
	d.mu.Unlock()

	p.result, p.err = run(ctx)
	close(p.done)
}
