// Package session keeps live-estimate sessions while a customer edits an
// order form. Each session owns a debounced recompute of the delivery
// estimate; quantity edits stream in and the latest settled value wins.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/estimation/recompute"
)

// Session is one customer's live-estimate state. Safe for concurrent use
// across requests.
type Session struct {
	id    uuid.UUID
	sched *recompute.Scheduler

	mu        sync.Mutex
	base      estimation.Input
	current   *estimation.Result
	updatedAt time.Time
}

func (s *Session) ID() uuid.UUID { return s.id }

// QuantityChanged feeds one edit of the quantity field into the debounced
// recompute. A blank value clears the current estimate synchronously.
func (s *Session) QuantityChanged(ctx context.Context, raw string) {
	s.sched.QuantityChanged(ctx, raw)
}

// Snapshot returns the most recently applied estimate and when it was
// applied. A nil result means nothing is displayed: no edit has settled
// yet, or the field went blank.
func (s *Session) Snapshot() (*estimation.Result, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.updatedAt
}

func (s *Session) input(quantity int) estimation.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.base
	in.Quantity = quantity
	return in
}

// store is the scheduler's apply callback. It must not call back into the
// scheduler. A failed compute clears the display rather than showing a
// zero-valued estimate.
func (s *Session) store(res *estimation.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		res = nil
	}
	s.current = res
	s.updatedAt = time.Now()
}

func (s *Session) close() {
	s.sched.Close()
}
