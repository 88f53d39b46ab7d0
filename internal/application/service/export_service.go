package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

// ExportService renders reports and payment statements and archives a copy
type ExportService struct {
	reports    port.ReportExporter
	statements port.StatementRenderer
	storage    port.FileStorage
	logger     Logger
	now        func() time.Time
}

// NewExportService creates an ExportService; storage may be nil to skip archiving
func NewExportService(reports port.ReportExporter, statements port.StatementRenderer, storage port.FileStorage, logger Logger) *ExportService {
	return &ExportService{
		reports:    reports,
		statements: statements,
		storage:    storage,
		logger:     orNop(logger),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Report renders views into a spreadsheet and returns its bytes and file name
func (s *ExportService) Report(ctx context.Context, views []entity.ExpenseView) ([]byte, string, error) {
	data, err := s.reports.Export(ctx, views)
	if err != nil {
		s.logger.Error("Failed to export expenses", "error", err, "count", len(views))
		return nil, "", fmt.Errorf("export expenses: %w", err)
	}

	name := fmt.Sprintf("expenses-%s.xlsx", s.now().Format("20060102-150405"))
	s.archive(ctx, path.Join("reports", name), data)
	s.logger.Info("Expense report exported", "count", len(views), "file", name)
	return data, name, nil
}

// Statement renders the payment statement of a PAID expense
func (s *ExportService) Statement(ctx context.Context, view entity.ExpenseView, owner entity.Identity) ([]byte, string, error) {
	if view.Status != workflow.StatePaid {
		return nil, "", &entity.Error{
			Kind:      entity.KindState,
			ExpenseID: view.ID,
			Field:     "status",
			Message:   "a statement exists only for a PAID expense",
		}
	}

	data, err := s.statements.Render(ctx, view, owner)
	if err != nil {
		s.logger.Error("Failed to render statement", "error", err, "expense_id", view.ID)
		return nil, "", fmt.Errorf("render statement: %w", err)
	}

	name := fmt.Sprintf("statement-%s.pdf", view.ID)
	s.archive(ctx, path.Join("statements", view.OwnerID, name), data)
	s.logger.Info("Payment statement rendered", "expense_id", view.ID)
	return data, name, nil
}

// Archived lists the archived reports, or the statements of ownerID when set
func (s *ExportService) Archived(ctx context.Context, ownerID string) ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	dir := "reports"
	if ownerID != "" {
		dir = path.Join("statements", ownerID)
	}
	return s.storage.List(ctx, dir)
}

// Fetch reads an archived document by its relative path
func (s *ExportService) Fetch(ctx context.Context, rel string) ([]byte, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("document %s: %w", rel, port.ErrNotFound)
	}
	return s.storage.Read(ctx, rel)
}

// archive keeps a copy; failures are logged and do not fail the export
func (s *ExportService) archive(ctx context.Context, rel string, data []byte) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(ctx, rel, data); err != nil {
		s.logger.Warn("Failed to archive document", "path", rel, "error", err)
	}
}
