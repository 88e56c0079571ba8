package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
)

type stubEstimator struct {
	mu     sync.Mutex
	inputs []estimation.Input
}

func (s *stubEstimator) Estimate(_ context.Context, in estimation.Input) (estimation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	label := estimation.DayLabel(1)
	return estimation.Result{
		DeliveryDate:     time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		DeliveryDayLabel: &label,
		Source:           estimation.SourceQuantity,
	}, nil
}

func (s *stubEstimator) recorded() []estimation.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]estimation.Input, len(s.inputs))
	copy(out, s.inputs)
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "session-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func newTestManager(t *testing.T, est estimation.Service, debounce time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(est, debounce, testLogger(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Shutdown)
	return m
}

func TestSessionQuantityEditProducesEstimate(t *testing.T) {
	est := &stubEstimator{}
	m := newTestManager(t, est, 10*time.Millisecond)

	franchise := uuid.New()
	sess, err := m.Open(context.Background(), estimation.Input{
		FranchiseID: franchise,
		OrderTime:   time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
		Timezone:    "Asia/Colombo",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sess.QuantityChanged(context.Background(), "12")
	time.Sleep(100 * time.Millisecond)

	res, updatedAt := sess.Snapshot()
	if res == nil {
		t.Fatal("snapshot is nil after a settled edit")
	}
	if res.DeliveryDayLabel == nil || *res.DeliveryDayLabel != "1 day" {
		t.Fatalf("label = %v, want 1 day", res.DeliveryDayLabel)
	}
	if updatedAt.IsZero() {
		t.Fatal("updatedAt not set")
	}

	inputs := est.recorded()
	if len(inputs) != 1 {
		t.Fatalf("estimator calls = %d, want 1", len(inputs))
	}
	if inputs[0].Quantity != 12 || inputs[0].FranchiseID != franchise || inputs[0].Timezone != "Asia/Colombo" {
		t.Fatalf("estimator input = %+v, want session base with quantity 12", inputs[0])
	}
}

func TestSessionBlankEditClears(t *testing.T) {
	est := &stubEstimator{}
	m := newTestManager(t, est, 10*time.Millisecond)

	sess, err := m.Open(context.Background(), estimation.Input{FranchiseID: uuid.New()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sess.QuantityChanged(context.Background(), "5")
	time.Sleep(80 * time.Millisecond)
	if res, _ := sess.Snapshot(); res == nil {
		t.Fatal("expected an estimate before the blank edit")
	}

	sess.QuantityChanged(context.Background(), "")
	// Cleared before the call returns, no debounce wait.
	if res, _ := sess.Snapshot(); res != nil {
		t.Fatalf("snapshot = %+v, want nil after blank edit", res)
	}
}

func TestManagerGetAndClose(t *testing.T) {
	m := newTestManager(t, &stubEstimator{}, time.Millisecond)

	sess, err := m.Open(context.Background(), estimation.Input{FranchiseID: uuid.New()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, ok := m.Get(sess.ID())
	if !ok || got != sess {
		t.Fatalf("Get = (%v, %v), want the opened session", got, ok)
	}

	if !m.Close(sess.ID()) {
		t.Fatal("Close reported no session")
	}
	if _, ok := m.Get(sess.ID()); ok {
		t.Fatal("session still visible after Close")
	}
	if m.Close(sess.ID()) {
		t.Fatal("second Close reported success")
	}
	if m.Close(uuid.New()) {
		t.Fatal("Close of unknown id reported success")
	}
}

func TestManagerShutdownStopsRecomputes(t *testing.T) {
	est := &stubEstimator{}
	m := newTestManager(t, est, 10*time.Millisecond)

	sess, err := m.Open(context.Background(), estimation.Input{FranchiseID: uuid.New()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sess.QuantityChanged(context.Background(), "7")
	m.Shutdown()

	time.Sleep(80 * time.Millisecond)
	if res, _ := sess.Snapshot(); res != nil {
		t.Fatalf("snapshot = %+v, want nil after shutdown", res)
	}
	if _, ok := m.Get(sess.ID()); ok {
		t.Fatal("session still registered after shutdown")
	}
}

func TestNewManagerValidatesDeps(t *testing.T) {
	if _, err := NewManager(nil, time.Second, testLogger(), nil); err == nil {
		t.Fatal("expected error for missing estimator")
	}
	if _, err := NewManager(&stubEstimator{}, time.Second, nil, nil); err == nil {
		t.Fatal("expected error for missing logger")
	}

	m, err := NewManager(&stubEstimator{}, 0, testLogger(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Shutdown()
	if m.debounce <= 0 {
		t.Fatalf("debounce = %v, want the recompute default", m.debounce)
	}
}
