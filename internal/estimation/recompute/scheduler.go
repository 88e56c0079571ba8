// Package recompute debounces live quantity edits into delivery-date
// recomputations, dropping stale results when edits overlap in flight.
package recompute

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
	"github.com/techb2bnew/coconut-delivery/pkg/metrics"
)

// DefaultDebounce is how long a quantity edit must sit untouched before a
// recompute dispatches.
const DefaultDebounce = 500 * time.Millisecond

// ComputeFunc runs the estimate for a settled quantity.
type ComputeFunc func(ctx context.Context, quantity int) (estimation.Result, error)

// ApplyFunc receives the outcome of the freshest dispatch. A nil result
// means the estimate was cleared (the quantity field went blank). It runs
// under the Scheduler's lock and must not call back into the Scheduler.
type ApplyFunc func(res *estimation.Result, err error)

// Config wires a Scheduler.
type Config struct {
	Debounce time.Duration
	Compute  ComputeFunc
	Apply    ApplyFunc
	Logger   *logger.Logger
	Metrics  *metrics.EstimatorMetrics
}

// Scheduler serializes quantity edits into at most one recompute per settle
// window. Results are applied last-dispatched-wins: a dispatch that was
// superseded while its compute ran is dropped, never applied.
type Scheduler struct {
	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool

	debounce time.Duration
	compute  ComputeFunc
	apply    ApplyFunc
	logg     *logger.Logger
	metrics  *metrics.EstimatorMetrics
}

// NewScheduler builds a Scheduler. Metrics may be nil.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Compute == nil {
		return nil, errors.New(errors.CodeInternal, "recompute: compute func is required")
	}
	if cfg.Apply == nil {
		return nil, errors.New(errors.CodeInternal, "recompute: apply func is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New(errors.CodeInternal, "recompute: logger is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Scheduler{
		debounce: cfg.Debounce,
		compute:  cfg.Compute,
		apply:    cfg.Apply,
		logg:     cfg.Logger,
		metrics:  cfg.Metrics,
	}, nil
}

// QuantityChanged handles one edit of the quantity field. A blank value
// clears the current estimate synchronously and cancels any pending or
// in-flight recompute. Any other value restarts the settle window.
func (s *Scheduler) QuantityChanged(ctx context.Context, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		s.clear()
		return
	}

	quantity, err := strconv.Atoi(trimmed)
	if err != nil || quantity <= 0 {
		s.logg.Warn(s.logg.WithField(ctx, "quantity", raw), "ignoring unusable quantity edit, clearing estimate")
		s.clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	// The dispatch id is fixed here, not when the timer fires. A timer
	// that expires just as a clear or a newer edit calls Stop may still
	// run its callback; the stale id makes fire drop it.
	s.seq++
	id := s.seq
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(ctx, id, quantity)
	})
}

// clear invalidates every outstanding dispatch and applies the cleared
// state before returning.
func (s *Scheduler) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	s.apply(nil, nil)
}

// fire runs on the timer goroutine once a quantity has settled. id is the
// dispatch id assigned when the timer was armed; it is checked both before
// and after the compute so a callback that lost the Stop race never applies.
func (s *Scheduler) fire(ctx context.Context, id uint64, quantity int) {
	s.mu.Lock()
	if s.closed || id != s.seq {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.IncStaleDrop()
		}
		s.logg.Debug(s.logg.WithField(ctx, "quantity", quantity), "dropping superseded recompute dispatch")
		return
	}
	s.mu.Unlock()

	res, err := s.compute(ctx, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || id != s.seq {
		if s.metrics != nil {
			s.metrics.IncStaleDrop()
		}
		s.logg.Debug(s.logg.WithField(ctx, "quantity", quantity), "dropping stale recompute result")
		return
	}

	s.apply(&res, err)
}

// Close cancels pending timers and guarantees no callback runs afterwards.
// In-flight computes finish but their results are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}
