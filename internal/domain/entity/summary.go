package entity

import "github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"

// StatusTotal aggregates expenses sharing a status
type StatusTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// Summary is a snapshot aggregation of a set of expenses
type Summary struct {
	ByStatus map[workflow.State]StatusTotal `json:"by_status"`
	Count    int                            `json:"count"`
	Total    float64                        `json:"total"`
}

// Summarize aggregates the given snapshots by status
func Summarize(views []ExpenseView) Summary {
	s := Summary{ByStatus: make(map[workflow.State]StatusTotal, len(workflow.AllStates()))}
	for _, state := range workflow.AllStates() {
		s.ByStatus[state] = StatusTotal{}
	}
	for _, v := range views {
		st := s.ByStatus[v.Status]
		st.Count++
		st.Amount = roundCents(st.Amount + v.Amount)
		s.ByStatus[v.Status] = st
		s.Count++
		s.Total = roundCents(s.Total + v.Amount)
	}
	return s
}

// For returns the aggregate of one status
func (s Summary) For(state workflow.State) StatusTotal {
	return s.ByStatus[state]
}

// FilterByStatus keeps the snapshots in the given status
func FilterByStatus(views []ExpenseView, state workflow.State) []ExpenseView {
	out := make([]ExpenseView, 0, len(views))
	for _, v := range views {
		if v.Status == state {
			out = append(out, v)
		}
	}
	return out
}

// SumByStatus returns the total amount of the snapshots in the given status
func SumByStatus(views []ExpenseView, state workflow.State) float64 {
	var total float64
	for _, v := range views {
		if v.Status == state {
			total = roundCents(total + v.Amount)
		}
	}
	return total
}
