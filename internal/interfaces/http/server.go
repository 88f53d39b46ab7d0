// Package http exposes the expense workflows over a JSON API. The acting
// account is named by the X-Account-ID header.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/service"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// HealthFunc reports whether the service is healthy plus a detail payload
type HealthFunc func() (bool, interface{})

// Services are the application services the API delegates to
type Services struct {
	Workflows *service.Workflows
	Accounts  *service.AccountService
	Export    *service.ExportService
	Health    HealthFunc
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := newHandlers(s.services, s.logger)

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	api.POST("/accounts", h.RegisterAccount)

	authed := api.Group("", s.actorMiddleware())
	authed.GET("/me", h.Me)

	admin := authed.Group("/accounts", requireRole(entity.RoleAdministrator))
	{
		admin.GET("", h.ListAccounts)
		admin.POST("/:id/validate", h.ValidateAccount)
		admin.POST("/:id/deactivate", h.DeactivateAccount)
	}

	expenses := authed.Group("/expenses", requireRole(entity.RoleEmployee))
	{
		expenses.POST("", h.CreateExpense)
		expenses.GET("", h.ListExpenses)
		expenses.GET("/summary", h.ExpenseSummary)
		expenses.GET("/statements", h.ListStatements)
		expenses.GET("/:id", h.GetExpense)
		expenses.PATCH("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.WithdrawExpense)
		expenses.POST("/:id/submit", h.SubmitExpense)
		expenses.POST("/:id/recalculate", h.RecalculateExpense)
		expenses.GET("/:id/statement.pdf", h.ExpenseStatement)
	}

	review := authed.Group("/review", requireRole(entity.RoleAccountant))
	{
		review.GET("", h.ListReviewed)
		review.GET("/pending", h.ListPending)
		review.GET("/summary", h.ReviewSummary)
		review.GET("/export.xlsx", h.ExportReviewed)
		review.GET("/reports", h.ListReports)
		review.GET("/reports/:name", h.FetchReport)
		review.POST("/:id/control", h.ControlExpense)
		review.POST("/:id/accept", h.AcceptExpense)
		review.POST("/:id/refuse", h.RefuseExpense)
		review.POST("/:id/schedule-payment", h.SchedulePayment)
		review.POST("/:id/confirm-payment", h.ConfirmPayment)
		review.DELETE("/:id", h.ReleaseExpense)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
