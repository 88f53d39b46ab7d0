package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
)

// StatementWriter renders the payment statement of a single expense as PDF
type StatementWriter struct {
	company string
	now     func() time.Time
}

// NewStatementWriter creates a StatementWriter; company heads every page
func NewStatementWriter(company string) *StatementWriter {
	if strings.TrimSpace(company) == "" {
		company = "Frais & Co"
	}
	return &StatementWriter{
		company: company,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Render implements port.StatementRenderer
func (w *StatementWriter) Render(ctx context.Context, view entity.ExpenseView, owner entity.Identity) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Payment statement "+view.ID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(w.company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Expense payment statement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Issued on "+w.now().Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Beneficiary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if owner != nil {
		pdf.CellFormat(0, 6, tr(owner.DisplayName()), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(owner.EmailAddress()), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, tr(view.OwnerID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{55, 115}
	rows := [][]string{
		{"Expense", view.ID},
		{"Kind", string(view.Kind)},
		{"Date", view.Date.Format("2006-01-02")},
		{"Details", describe(view.Details)},
		{"Receipt", safeValue(view.ReceiptReference)},
		{"Status", view.Status.String()},
	}
	for _, row := range rows {
		drawRow(pdf, widths, tr(row[0]), tr(row[1]))
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Amount paid: %s EUR", formatAmount(view.Amount)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *gofpdf.Fpdf, widths []float64, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0], 8, label, "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(widths[1], 8, value, "1", 1, "L", false, 0, "")
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// Verify interface compliance
var _ port.StatementRenderer = (*StatementWriter)(nil)
