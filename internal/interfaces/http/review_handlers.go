package http

import (
	"path"

	"github.com/gin-gonic/gin"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/service"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

func (h *Handlers) accountant(c *gin.Context) *service.AccountantWorkflow {
	return h.services.Workflows.Accountant(actorFrom(c))
}

// reviewed resolves :id from the shared registry
func (h *Handlers) reviewed(c *gin.Context) (*service.AccountantWorkflow, *entity.Expense) {
	w := h.accountant(c)
	e, err := w.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, nil
	}
	return w, e
}

// decision runs one accountant action on :id and returns the new snapshot
func (h *Handlers) decision(c *gin.Context, act func(*service.AccountantWorkflow, *entity.Expense) error) {
	w, e := h.reviewed(c)
	if e == nil {
		return
	}
	if err := act(w, e); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, e.Snapshot())
}

// ListPending handles GET /api/review/pending
func (h *Handlers) ListPending(c *gin.Context) {
	views, err := h.accountant(c).Pending(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, views)
}

// ListReviewed handles GET /api/review[?status=], the working set
func (h *Handlers) ListReviewed(c *gin.Context) {
	state, filtered, err := parseStatus(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	w := h.accountant(c)
	if filtered {
		ok(c, w.ListByStatus(state))
		return
	}
	ok(c, w.List())
}

// ReviewSummary handles GET /api/review/summary
func (h *Handlers) ReviewSummary(c *gin.Context) {
	ok(c, h.accountant(c).Summary())
}

// ControlExpense handles POST /api/review/:id/control
func (h *Handlers) ControlExpense(c *gin.Context) {
	h.decision(c, func(w *service.AccountantWorkflow, e *entity.Expense) error {
		return w.Control(c.Request.Context(), e)
	})
}

// AcceptExpense handles POST /api/review/:id/accept
func (h *Handlers) AcceptExpense(c *gin.Context) {
	h.decision(c, func(w *service.AccountantWorkflow, e *entity.Expense) error {
		return w.Accept(c.Request.Context(), e)
	})
}

// RefuseExpense handles POST /api/review/:id/refuse
func (h *Handlers) RefuseExpense(c *gin.Context) {
	var req RefuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.decision(c, func(w *service.AccountantWorkflow, e *entity.Expense) error {
		return w.Refuse(c.Request.Context(), e, req.Reason)
	})
}

// SchedulePayment handles POST /api/review/:id/schedule-payment
func (h *Handlers) SchedulePayment(c *gin.Context) {
	h.decision(c, func(w *service.AccountantWorkflow, e *entity.Expense) error {
		return w.SchedulePayment(c.Request.Context(), e)
	})
}

// ConfirmPayment handles POST /api/review/:id/confirm-payment
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	h.decision(c, func(w *service.AccountantWorkflow, e *entity.Expense) error {
		return w.ConfirmPayment(c.Request.Context(), e)
	})
}

// ReleaseExpense handles DELETE /api/review/:id
func (h *Handlers) ReleaseExpense(c *gin.Context) {
	id := c.Param("id")
	if err := h.accountant(c).Release(id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": id, "released": true})
}

// ExportReviewed handles GET /api/review/export.xlsx[?status=]
func (h *Handlers) ExportReviewed(c *gin.Context) {
	state, filtered, err := parseStatus(c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	w := h.accountant(c)
	views := w.List()
	if filtered {
		views = w.ListByStatus(state)
	}

	data, name, err := h.services.Export.Report(c.Request.Context(), views)
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, name, contentTypeXLSX, data)
}

// ListReports handles GET /api/review/reports
func (h *Handlers) ListReports(c *gin.Context) {
	names, err := h.services.Export.Archived(c.Request.Context(), "")
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, names)
}

// FetchReport handles GET /api/review/reports/:name
func (h *Handlers) FetchReport(c *gin.Context) {
	name := path.Base(c.Param("name"))
	data, err := h.services.Export.Fetch(c.Request.Context(), path.Join("reports", name))
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, name, contentTypeXLSX, data)
}
