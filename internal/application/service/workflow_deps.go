package service

import (
	"sync"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// WorkflowDeps are the collaborators shared by employee and accountant workflows
type WorkflowDeps struct {
	Registry   *ExpenseRegistry
	Store      Persistence
	Dispatcher dispatcher.Dispatcher
	Resolver   port.DistanceResolver
	Pricing    Pricing
	Logger     Logger
}

func (d WorkflowDeps) withDefaults() WorkflowDeps {
	if d.Registry == nil {
		d.Registry = NewExpenseRegistry(d.Store.Expenses)
	}
	if d.Pricing == (Pricing{}) {
		d.Pricing = DefaultPricing()
	}
	d.Logger = orNop(d.Logger)
	return d
}

// actor holds the acting identity of a workflow; it can be rebound when the
// account record is reloaded
type actor struct {
	mu       sync.RWMutex
	identity entity.Identity
}

func (a *actor) get() entity.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

func (a *actor) set(identity entity.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = identity
}

// authorize returns the identity if it may act
func (a *actor) authorize() (entity.Identity, error) {
	identity := a.get()
	if identity == nil || !identity.IsActive() {
		id := ""
		if identity != nil {
			id = identity.AccountID()
		}
		return nil, entity.NewAuthorizationError(id)
	}
	return identity, nil
}

// expenseSet is an insertion-ordered set of expenses
type expenseSet struct {
	mu       sync.RWMutex
	order    []string
	expenses map[string]*entity.Expense
}

func newExpenseSet() *expenseSet {
	return &expenseSet{expenses: make(map[string]*entity.Expense)}
}

func (s *expenseSet) add(e *entity.Expense) bool {
	id := e.ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; ok {
		return false
	}
	s.expenses[id] = e
	s.order = append(s.order, id)
	return true
}

func (s *expenseSet) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return false
	}
	delete(s.expenses, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *expenseSet) get(id string) (*entity.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	return e, ok
}

// contains reports whether this exact expense is a member
func (s *expenseSet) contains(e *entity.Expense) bool {
	member, ok := s.get(e.ID())
	return ok && member == e
}

// views returns member snapshots in insertion order. Withdrawn members no
// longer exist and are pruned.
func (s *expenseSet) views() []entity.ExpenseView {
	s.mu.RLock()
	members := make([]*entity.Expense, 0, len(s.order))
	for _, id := range s.order {
		members = append(members, s.expenses[id])
	}
	s.mu.RUnlock()

	views := make([]entity.ExpenseView, 0, len(members))
	for _, e := range members {
		if e.IsWithdrawn() {
			s.prune(e)
			continue
		}
		views = append(views, e.Snapshot())
	}
	return views
}

// prune drops e if it is still the member under its id
func (s *expenseSet) prune(e *entity.Expense) {
	if s.contains(e) {
		s.remove(e.ID())
	}
}
