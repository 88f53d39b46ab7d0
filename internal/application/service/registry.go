package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// ExpenseRegistry hands out one in-memory Expense per id so that every
// workflow in the process serialises on the same entity lock. Expenses are
// restored from the repository on first access.
type ExpenseRegistry struct {
	mu       sync.Mutex
	repo     port.ExpenseRepository
	expenses map[string]*entity.Expense
}

// NewExpenseRegistry creates a registry; repo may be nil for a memory-only process
func NewExpenseRegistry(repo port.ExpenseRepository) *ExpenseRegistry {
	return &ExpenseRegistry{
		repo:     repo,
		expenses: make(map[string]*entity.Expense),
	}
}

// Get returns the expense with the given id, loading it if needed
func (r *ExpenseRegistry) Get(ctx context.Context, id string) (*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.expenses[id]; ok {
		return e, nil
	}
	if r.repo == nil {
		return nil, fmt.Errorf("expense %s: %w", id, port.ErrNotFound)
	}

	view, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load expense %s: %w", id, err)
	}
	return r.restoreLocked(*view)
}

// Put registers a newly created expense
func (r *ExpenseRegistry) Put(e *entity.Expense) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[e.ID()] = e
}

// Remove forgets an expense
func (r *ExpenseRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expenses, id)
}

// ByOwner returns every expense of an owner
func (r *ExpenseRegistry) ByOwner(ctx context.Context, ownerID string) ([]*entity.Expense, error) {
	if r.repo == nil {
		return r.filterCached(func(e *entity.Expense) bool { return e.OwnerID() == ownerID }), nil
	}
	views, err := r.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses of %s: %w", ownerID, err)
	}
	return r.merge(views)
}

// ByStatus returns every expense currently in the given status
func (r *ExpenseRegistry) ByStatus(ctx context.Context, status workflow.State) ([]*entity.Expense, error) {
	inStatus := func(e *entity.Expense) bool { return e.Status() == status }
	if r.repo == nil {
		return r.filterCached(inStatus), nil
	}
	views, err := r.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list %s expenses: %w", status, err)
	}
	merged, err := r.merge(views)
	if err != nil {
		return nil, err
	}
	out := merged[:0]
	for _, e := range merged {
		if inStatus(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *ExpenseRegistry) merge(views []entity.ExpenseView) ([]*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Expense, 0, len(views))
	for _, v := range views {
		if e, ok := r.expenses[v.ID]; ok {
			out = append(out, e)
			continue
		}
		e, err := r.restoreLocked(v)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *ExpenseRegistry) restoreLocked(v entity.ExpenseView) (*entity.Expense, error) {
	e, err := entity.RestoreExpense(v)
	if err != nil {
		return nil, fmt.Errorf("restore expense %s: %w", v.ID, err)
	}
	r.expenses[v.ID] = e
	return e, nil
}

func (r *ExpenseRegistry) filterCached(keep func(*entity.Expense) bool) []*entity.Expense {
	r.mu.Lock()
	all := make([]*entity.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		all = append(all, e)
	}
	r.mu.Unlock()

	out := make([]*entity.Expense, 0, len(all))
	for _, e := range all {
		if !e.IsWithdrawn() && keep(e) {
			out = append(out, e)
		}
	}
	sortByCreation(out)
	return out
}

func sortByCreation(expenses []*entity.Expense) {
	created := make(map[*entity.Expense]entity.ExpenseView, len(expenses))
	for _, e := range expenses {
		created[e] = e.Snapshot()
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := created[expenses[i]], created[expenses[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
