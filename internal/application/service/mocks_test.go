package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/event"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// mockExpenseRepo keeps snapshots in a map unless a func field overrides a call
type mockExpenseRepo struct {
	mu    sync.Mutex
	rows  map[string]entity.ExpenseView
	saves []entity.ExpenseView

	saveFunc             func(ctx context.Context, v entity.ExpenseView) error
	deleteFunc           func(ctx context.Context, id string) error
	listPendingSinceFunc func(ctx context.Context, cutoff time.Time) ([]entity.ExpenseView, error)
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{rows: make(map[string]entity.ExpenseView)}
}

func (m *mockExpenseRepo) Save(ctx context.Context, v entity.ExpenseView) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, v); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[v.ID] = v
	m.saves = append(m.saves, v)
	return nil
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*entity.ExpenseView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &v, nil
}

func (m *mockExpenseRepo) ListByOwner(ctx context.Context, ownerID string) ([]entity.ExpenseView, error) {
	return m.filter(func(v entity.ExpenseView) bool { return v.OwnerID == ownerID }), nil
}

func (m *mockExpenseRepo) ListByStatus(ctx context.Context, status workflow.State) ([]entity.ExpenseView, error) {
	return m.filter(func(v entity.ExpenseView) bool { return v.Status == status }), nil
}

func (m *mockExpenseRepo) ListPendingSince(ctx context.Context, cutoff time.Time) ([]entity.ExpenseView, error) {
	if m.listPendingSinceFunc != nil {
		return m.listPendingSinceFunc(ctx, cutoff)
	}
	return m.filter(func(v entity.ExpenseView) bool {
		return v.Status == workflow.StateInProgress && v.StatusChangedAt.Before(cutoff)
	}), nil
}

func (m *mockExpenseRepo) filter(keep func(entity.ExpenseView) bool) []entity.ExpenseView {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ExpenseView
	for _, v := range m.rows {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (m *mockExpenseRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.ExpenseHistory
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.ExpenseHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) ListByExpense(ctx context.Context, expenseID string) ([]*entity.ExpenseHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ExpenseHistory
	for _, h := range m.entries {
		if h.ExpenseID == expenseID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) actions(expenseID string) []string {
	entries, _ := m.ListByExpense(context.Background(), expenseID)
	out := make([]string, 0, len(entries))
	for _, h := range entries {
		out = append(out, h.ActionType)
	}
	return out
}

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
	order    []string

	updateFunc func(ctx context.Context, a *entity.Account) error
}

func newMockAccountRepo(accounts ...*entity.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[string]*entity.Account)}
	for _, a := range accounts {
		_ = m.Create(context.Background(), a)
	}
	return m
}

func (m *mockAccountRepo) Create(ctx context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *a
	m.accounts[a.ID] = &c
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *mockAccountRepo) Update(ctx context.Context, a *entity.Account) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; !ok {
		return port.ErrNotFound
	}
	c := *a
	m.accounts[a.ID] = &c
	return nil
}

func (m *mockAccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Account, 0, len(m.order))
	for _, id := range m.order {
		c := *m.accounts[id]
		out = append(out, &c)
	}
	return out, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, fmt.Sprint(msg, keysAndValues))
}

func (m *mockLogger) warnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.warns)
}

// recordingDispatcher runs nothing and remembers what was published
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *recordingDispatcher) Subscribe(event.Type, dispatcher.Handler)              {}
func (r *recordingDispatcher) SubscribeNamed(event.Type, string, dispatcher.Handler) {}
func (r *recordingDispatcher) Unsubscribe(event.Type, string)                        {}
func (r *recordingDispatcher) ListHandlers(event.Type) []dispatcher.HandlerInfo      { return nil }
func (r *recordingDispatcher) Close() error                                          { return nil }

func (r *recordingDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	r.DispatchAsync(ctx, evt)
	return nil
}

func (r *recordingDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingDispatcher) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingDispatcher) last() *event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type mockSender struct {
	mu       sync.Mutex
	sent     []port.Message
	sendFunc func(ctx context.Context, msg port.Message) error
}

func (m *mockSender) Send(ctx context.Context, msg port.Message) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fixedResolver map[[2]string]float64

func (f fixedResolver) ResolveDistanceKm(ctx context.Context, from, to string) (float64, error) {
	if km, ok := f[[2]string{from, to}]; ok {
		return km, nil
	}
	return 100, nil
}

func activeAccount(id string, role entity.Role) *entity.Account {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &entity.Account{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role, Active: true, CreatedAt: now, UpdatedAt: now}
}
