package http

import (
	"github.com/gin-gonic/gin"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/service"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// employee returns the workflow of the acting employee. It writes the error
// response and returns nil on failure.
func (h *Handlers) employee(c *gin.Context) *service.EmployeeWorkflow {
	w, err := h.services.Workflows.Employee(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return nil
	}
	return w
}

// claim resolves the :id claim of the acting employee
func (h *Handlers) claim(c *gin.Context) (*service.EmployeeWorkflow, *entity.Expense) {
	w := h.employee(c)
	if w == nil {
		return nil, nil
	}
	e, err := w.Lookup(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, nil
	}
	return w, e
}

// CreateExpense handles POST /api/expenses. The expense is built and filed in
// one step and comes back as DRAFT.
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	w := h.employee(c)
	if w == nil {
		return
	}
	params, err := req.Params(actorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	e, err := w.NewExpense(ctx, params)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := w.File(ctx, e); err != nil {
		h.fail(c, err)
		return
	}
	created(c, e.Snapshot())
}

// ListExpenses handles GET /api/expenses[?status=]
func (h *Handlers) ListExpenses(c *gin.Context) {
	state, filtered, err := parseStatus(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	w := h.employee(c)
	if w == nil {
		return
	}
	if filtered {
		ok(c, w.ListByStatus(state))
		return
	}
	ok(c, w.List())
}

// ExpenseSummary handles GET /api/expenses/summary
func (h *Handlers) ExpenseSummary(c *gin.Context) {
	w := h.employee(c)
	if w == nil {
		return
	}
	ok(c, w.Summary())
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	_, e := h.claim(c)
	if e == nil {
		return
	}
	ok(c, e.Snapshot())
}

// UpdateExpense handles PATCH /api/expenses/:id
func (h *Handlers) UpdateExpense(c *gin.Context) {
	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		h.fail(c, err)
		return
	}

	w, e := h.claim(c)
	if e == nil {
		return
	}
	if err := w.Update(c.Request.Context(), e, patch); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, e.Snapshot())
}

// SubmitExpense handles POST /api/expenses/:id/submit
func (h *Handlers) SubmitExpense(c *gin.Context) {
	w, e := h.claim(c)
	if e == nil {
		return
	}
	if err := w.Submit(c.Request.Context(), e); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, e.Snapshot())
}

// RecalculateExpense handles POST /api/expenses/:id/recalculate. The body is
// optional.
func (h *Handlers) RecalculateExpense(c *gin.Context) {
	var req RecalculateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	w, e := h.claim(c)
	if e == nil {
		return
	}
	if _, err := w.Recalculate(c.Request.Context(), e, req.Price); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, e.Snapshot())
}

// WithdrawExpense handles DELETE /api/expenses/:id
func (h *Handlers) WithdrawExpense(c *gin.Context) {
	w, e := h.claim(c)
	if e == nil {
		return
	}
	if err := w.Withdraw(c.Request.Context(), e); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": e.ID(), "withdrawn": true})
}

// ExpenseStatement handles GET /api/expenses/:id/statement.pdf
func (h *Handlers) ExpenseStatement(c *gin.Context) {
	_, e := h.claim(c)
	if e == nil {
		return
	}
	data, name, err := h.services.Export.Statement(c.Request.Context(), e.Snapshot(), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, name, contentTypePDF, data)
}

// ListStatements handles GET /api/expenses/statements
func (h *Handlers) ListStatements(c *gin.Context) {
	names, err := h.services.Export.Archived(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, names)
}
