package entity

import (
	"sync"

	"github.com/google/uuid"
)

// Site is a place of work grouping expenses for reporting
type Site struct {
	ID   string
	Name string

	mu       sync.RWMutex
	order    []string
	expenses map[string]*Expense
}

// NewSite creates an empty site
func NewSite(name string) *Site {
	return &Site{
		ID:       uuid.NewString(),
		Name:     name,
		expenses: make(map[string]*Expense),
	}
}

// Add associates e with the site; it returns false if already present
func (s *Site) Add(e *Expense) bool {
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

// Remove dissociates the expense; it returns false if it was not present
func (s *Site) Remove(expenseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expenseID]; !ok {
		return false
	}
	delete(s.expenses, expenseID)
	for i, id := range s.order {
		if id == expenseID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Expenses returns the associated expenses in insertion order
func (s *Site) Expenses() []*Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.expenses[id])
	}
	return out
}

// Summary aggregates the associated expenses by status
func (s *Site) Summary() Summary {
	expenses := s.Expenses()
	views := make([]ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, e.Snapshot())
	}
	return Summarize(views)
}

// Total sums the amounts of every associated expense
func (s *Site) Total() float64 {
	return s.Summary().Total
}
