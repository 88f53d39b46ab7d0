package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprint(append([]interface{}{msg}, keysAndValues...)...))
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func (m *mockLogger) HasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func newTestDispatcher(t *testing.T, opts ...Option) Dispatcher {
	t.Helper()
	d, err := NewDispatcher(opts...)
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}
	return d
}

func submitted() *event.Event {
	return event.NewEvent(event.TypeExpenseSubmitted, "exp-1", "emp-1", nil)
}

func TestNewDispatcher(t *testing.T) {
	t.Run("creates dispatcher with defaults", func(t *testing.T) {
		d := newTestDispatcher(t)
		defer d.Close()
		if len(d.ListHandlers(event.TypeExpenseFiled)) != 0 {
			t.Error("expected no handlers")
		}
	})

	t.Run("ignores non-positive pool size", func(t *testing.T) {
		d := newTestDispatcher(t, WithPoolSize(0))
		defer d.Close()
		if got := d.(*eventDispatcher).poolSize; got != DefaultPoolSize {
			t.Errorf("expected pool size %d, got %d", DefaultPoolSize, got)
		}
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("assigns sequential names", func(t *testing.T) {
		d := newTestDispatcher(t)
		defer d.Close()

		noop := func(ctx context.Context, evt *event.Event) error { return nil }
		d.Subscribe(event.TypeExpenseSubmitted, noop)
		d.Subscribe(event.TypeExpenseSubmitted, noop)

		handlers := d.ListHandlers(event.TypeExpenseSubmitted)
		if len(handlers) != 2 {
			t.Fatalf("expected 2 handlers, got %d", len(handlers))
		}
		if handlers[0].Name != "handler-0" || handlers[1].Name != "handler-1" {
			t.Errorf("unexpected names %q, %q", handlers[0].Name, handlers[1].Name)
		}
		if handlers[0].Handler != nil {
			t.Error("ListHandlers must not expose handler functions")
		}
	})

	t.Run("logs registration", func(t *testing.T) {
		logger := &mockLogger{}
		d := newTestDispatcher(t, WithLogger(logger))
		defer d.Close()

		d.SubscribeNamed(event.TypeExpenseRefused, "notify-owner", func(ctx context.Context, evt *event.Event) error { return nil })
		if !logger.HasInfo("Handler registered") {
			t.Error("expected registration to be logged")
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	d := newTestDispatcher(t)
	defer d.Close()

	var calls []string
	d.SubscribeNamed(event.TypeExpensePaid, "a", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "a")
		return nil
	})
	d.SubscribeNamed(event.TypeExpensePaid, "b", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "b")
		return nil
	})
	d.Unsubscribe(event.TypeExpensePaid, "a")

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeExpensePaid, "exp-1", "acct-1", nil)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(calls) != 1 || calls[0] != "b" {
		t.Errorf("expected only b to run, got %v", calls)
	}
}

func TestDispatch(t *testing.T) {
	t.Run("runs handlers in order", func(t *testing.T) {
		d := newTestDispatcher(t)
		defer d.Close()

		var order []int
		for i := 0; i < 3; i++ {
			i := i
			d.Subscribe(event.TypeExpenseSubmitted, func(ctx context.Context, evt *event.Event) error {
				order = append(order, i)
				return nil
			})
		}

		if err := d.Dispatch(context.Background(), submitted()); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if fmt.Sprint(order) != "[0 1 2]" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		d := newTestDispatcher(t)
		defer d.Close()

		boom := errors.New("boom")
		var secondRan bool
		d.SubscribeNamed(event.TypeExpenseSubmitted, "failing", func(ctx context.Context, evt *event.Event) error { return boom })
		d.SubscribeNamed(event.TypeExpenseSubmitted, "second", func(ctx context.Context, evt *event.Event) error {
			secondRan = true
			return nil
		})

		err := d.Dispatch(context.Background(), submitted())
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if secondRan {
			t.Error("second handler should not run")
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		logger := &mockLogger{}
		d := newTestDispatcher(t, WithLogger(logger))
		defer d.Close()

		d.SubscribeNamed(event.TypeExpenseSubmitted, "panicky", func(ctx context.Context, evt *event.Event) error {
			panic("nil receipt")
		})

		err := d.Dispatch(context.Background(), submitted())
		if err == nil {
			t.Fatal("expected error from panicking handler")
		}
		if logger.ErrorCount() == 0 {
			t.Error("expected panic to be logged")
		}
	})

	t.Run("rejects events after close", func(t *testing.T) {
		d := newTestDispatcher(t)
		if err := d.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := d.Dispatch(context.Background(), submitted()); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
		if err := d.Close(); err == nil {
			t.Error("expected error on second close")
		}
	})
}

func TestDispatchAsync(t *testing.T) {
	t.Run("close waits for running handlers", func(t *testing.T) {
		d := newTestDispatcher(t, WithPoolSize(4))

		var count atomic.Int32
		for i := 0; i < 2; i++ {
			d.Subscribe(event.TypeExpenseValidated, func(ctx context.Context, evt *event.Event) error {
				time.Sleep(10 * time.Millisecond)
				count.Add(1)
				return nil
			})
		}

		for i := 0; i < 2; i++ {
			d.DispatchAsync(context.Background(), event.NewEvent(event.TypeExpenseValidated, "exp-1", "acct-1", nil))
		}
		if err := d.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if got := count.Load(); got != 4 {
			t.Errorf("expected 4 handler runs, got %d", got)
		}
	})

	t.Run("saturated pool drops instead of blocking", func(t *testing.T) {
		logger := &mockLogger{}
		d := newTestDispatcher(t, WithLogger(logger), WithPoolSize(1))

		release := make(chan struct{})
		var runs atomic.Int32
		d.Subscribe(event.TypeExpenseSubmitted, func(ctx context.Context, evt *event.Event) error {
			runs.Add(1)
			<-release
			return nil
		})

		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeExpenseSubmitted, "exp-1", "acct-1", nil))

		returned := make(chan struct{})
		go func() {
			d.DispatchAsync(context.Background(), event.NewEvent(event.TypeExpenseSubmitted, "exp-2", "acct-1", nil))
			close(returned)
		}()

		select {
		case <-returned:
		case <-time.After(time.Second):
			close(release)
			t.Fatal("DispatchAsync blocked on a saturated pool")
		}

		close(release)
		if err := d.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if got := runs.Load(); got != 1 {
			t.Errorf("expected 1 handler run, got %d", got)
		}
		if logger.ErrorCount() != 1 {
			t.Errorf("expected 1 logged drop, got %d", logger.ErrorCount())
		}
	})

	t.Run("handlers survive caller cancellation", func(t *testing.T) {
		d := newTestDispatcher(t)

		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		var ctxErr atomic.Value
		d.Subscribe(event.TypeExpenseRefused, func(hctx context.Context, evt *event.Event) error {
			<-started
			ctxErr.Store(fmt.Sprint(hctx.Err()))
			return nil
		})

		d.DispatchAsync(ctx, event.NewEvent(event.TypeExpenseRefused, "exp-1", "acct-1", nil))
		cancel()
		close(started)
		d.Close()

		if got := ctxErr.Load(); got != "<nil>" {
			t.Errorf("expected detached context, got err %v", got)
		}
	})

	t.Run("logs handler errors", func(t *testing.T) {
		logger := &mockLogger{}
		d := newTestDispatcher(t, WithLogger(logger))

		d.Subscribe(event.TypeExpenseRefused, func(ctx context.Context, evt *event.Event) error {
			return errors.New("smtp unavailable")
		})
		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeExpenseRefused, "exp-1", "acct-1", nil))
		d.Close()

		if logger.ErrorCount() != 1 {
			t.Errorf("expected 1 logged error, got %d", logger.ErrorCount())
		}
	})

	t.Run("drops events after close", func(t *testing.T) {
		logger := &mockLogger{}
		d := newTestDispatcher(t, WithLogger(logger))
		d.Close()

		var ran atomic.Bool
		d.Subscribe(event.TypeExpenseRefused, func(ctx context.Context, evt *event.Event) error {
			ran.Store(true)
			return nil
		})
		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeExpenseRefused, "exp-1", "acct-1", nil))

		if ran.Load() {
			t.Error("handler should not run after close")
		}
		if logger.ErrorCount() != 1 {
			t.Errorf("expected 1 logged error, got %d", logger.ErrorCount())
		}
	})
}
