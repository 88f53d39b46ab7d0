package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterAccount handles POST /api/accounts. The account stays inactive until
// an administrator validates it.
func (h *Handlers) RegisterAccount(c *gin.Context) {
	var req RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.services.Accounts.Register(c.Request.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, account)
}

// Me handles GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	ok(c, actorFrom(c))
}

// ListAccounts handles GET /api/accounts
func (h *Handlers) ListAccounts(c *gin.Context) {
	accounts, err := h.services.Accounts.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, accounts)
}

// ValidateAccount handles POST /api/accounts/:id/validate
func (h *Handlers) ValidateAccount(c *gin.Context) {
	account, err := h.services.Accounts.Validate(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, account)
}

// DeactivateAccount handles POST /api/accounts/:id/deactivate
func (h *Handlers) DeactivateAccount(c *gin.Context) {
	account, err := h.services.Accounts.Deactivate(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, account)
}
