package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Response is the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	services Services
	logger   Logger
}

func newHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	if h.services.Health == nil {
		c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": "healthy"}})
		return
	}

	healthy, detail := h.services.Health()
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, Response{Success: healthy, Data: detail})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
}

// fail writes err with the status of its business kind
func (h *Handlers) fail(c *gin.Context, err error) {
	var be *entity.Error
	if errors.As(err, &be) {
		c.JSON(statusForKind(be.Kind), Response{Success: false, Error: be.Error(), Kind: string(be.Kind)})
		return
	}
	if errors.Is(err, port.ErrNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}

	h.logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
}

func statusForKind(kind entity.ErrorKind) int {
	switch kind {
	case entity.KindAuthorization:
		return http.StatusForbidden
	case entity.KindMembership:
		return http.StatusNotFound
	case entity.KindState:
		return http.StatusConflict
	case entity.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
