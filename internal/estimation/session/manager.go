package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/estimation/recompute"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
	"github.com/techb2bnew/coconut-delivery/pkg/metrics"
)

// Manager owns the open live-estimate sessions and the debounce window
// they share.
type Manager struct {
	estimator estimation.Service
	debounce  time.Duration
	logg      *logger.Logger
	metrics   *metrics.EstimatorMetrics

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager builds the session manager. debounce <= 0 falls back to the
// recompute default; metrics may be nil.
func NewManager(estimator estimation.Service, debounce time.Duration, logg *logger.Logger, m *metrics.EstimatorMetrics) (*Manager, error) {
	if estimator == nil {
		return nil, errors.New(errors.CodeInternal, "session: estimator is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "session: logger is required")
	}
	if debounce <= 0 {
		debounce = recompute.DefaultDebounce
	}
	return &Manager{
		estimator: estimator,
		debounce:  debounce,
		logg:      logg,
		metrics:   m,
		sessions:  make(map[uuid.UUID]*Session),
	}, nil
}

// Open starts a session for the given order context. base.Quantity is
// ignored; quantities arrive through QuantityChanged edits.
func (m *Manager) Open(ctx context.Context, base estimation.Input) (*Session, error) {
	sess := &Session{id: uuid.New(), base: base}
	sched, err := recompute.NewScheduler(recompute.Config{
		Debounce: m.debounce,
		Compute: func(ctx context.Context, quantity int) (estimation.Result, error) {
			return m.estimator.Estimate(ctx, sess.input(quantity))
		},
		Apply:   sess.store,
		Logger:  m.logg,
		Metrics: m.metrics,
	})
	if err != nil {
		return nil, err
	}
	sess.sched = sched

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	m.logg.Debug(m.logg.WithField(ctx, "session_id", sess.id.String()), "live estimate session opened")
	return sess, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close tears down one session. It reports false when no such session is
// open.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	sess.close()
	return true
}

// Shutdown closes every open session. Called on server stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		open = append(open, sess)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, sess := range open {
		sess.close()
	}
}
