package service

import (
	"context"
	"sync"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// Workflows keeps one workflow per account so claim and working sets outlive
// a single request. All workflows share one registry.
type Workflows struct {
	deps WorkflowDeps

	mu          sync.Mutex
	employees   map[string]*EmployeeWorkflow
	accountants map[string]*AccountantWorkflow
}

// NewWorkflows creates an empty workflow cache
func NewWorkflows(deps WorkflowDeps) *Workflows {
	return &Workflows{
		deps:        deps.withDefaults(),
		employees:   make(map[string]*EmployeeWorkflow),
		accountants: make(map[string]*AccountantWorkflow),
	}
}

// Registry returns the shared expense registry
func (f *Workflows) Registry() *ExpenseRegistry {
	return f.deps.Registry
}

// Employee returns the workflow of identity, loading its claim set on first use
func (f *Workflows) Employee(ctx context.Context, identity entity.Identity) (*EmployeeWorkflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.employees[identity.AccountID()]; ok {
		w.Rebind(identity)
		return w, nil
	}

	w := NewEmployeeWorkflow(identity, f.deps)
	if err := w.Load(ctx); err != nil {
		return nil, err
	}
	f.employees[identity.AccountID()] = w
	return w, nil
}

// Accountant returns the workflow of identity
func (f *Workflows) Accountant(identity entity.Identity) *AccountantWorkflow {
	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.accountants[identity.AccountID()]; ok {
		w.Rebind(identity)
		return w
	}
	w := NewAccountantWorkflow(identity, f.deps)
	f.accountants[identity.AccountID()] = w
	return w
}
