package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/service"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// AccountHeader names the acting account
const AccountHeader = "X-Account-ID"

const actorKey = "actor"

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"account_id", c.GetHeader(AccountHeader),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+AccountHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// actorMiddleware loads the account named by the X-Account-ID header. Inactive
// accounts are loaded too; the workflows reject them.
func (s *Server) actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(AccountHeader))
		if id == "" {
			abort(c, http.StatusUnauthorized, AccountHeader+" header is required")
			return
		}

		account, err := s.services.Accounts.Get(c.Request.Context(), id)
		if err != nil {
			if service.IsNotFound(err) {
				abort(c, http.StatusUnauthorized, "unknown account")
				return
			}
			s.logger.Error("Failed to load acting account", "account_id", id, "error", err)
			abort(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(actorKey, account)
		c.Next()
	}
}

// requireRole rejects actors whose role is not one of roles
func requireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := actorFrom(c)
		for _, role := range roles {
			if account.Role == role {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "role "+string(account.Role)+" may not use this endpoint")
	}
}

func actorFrom(c *gin.Context) *entity.Account {
	return c.MustGet(actorKey).(*entity.Account)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}
