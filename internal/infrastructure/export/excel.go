package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/entity"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/domain/workflow"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "Summary"
)

var expenseHeaders = []string{"ID", "Owner", "Kind", "Date", "Status", "Amount", "Receipt", "Details", "Refusal reason", "Valid"}

// ExcelExporter writes expense snapshots to an xlsx workbook with one row per
// expense and a per-status summary sheet.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates an ExcelExporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export implements port.ReportExporter
func (e *ExcelExporter) Export(ctx context.Context, views []entity.ExpenseView) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", expensesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := file.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	amountStyle, err := file.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := e.writeRow(file, expensesSheet, 1, toCells(expenseHeaders)); err != nil {
		return nil, err
	}
	_ = file.SetRowStyle(expensesSheet, 1, 1, headerStyle)

	for i, v := range views {
		row := []interface{}{
			v.ID,
			v.OwnerID,
			string(v.Kind),
			v.Date.Format("2006-01-02"),
			v.Status.String(),
			v.Amount,
			v.ReceiptReference,
			describe(v.Details),
			v.RefusalReason,
			v.Valid,
		}
		if err := e.writeRow(file, expensesSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if len(views) > 0 {
		_ = file.SetCellStyle(expensesSheet, "F2", fmt.Sprintf("F%d", len(views)+1), amountStyle)
	}
	_ = file.SetColWidth(expensesSheet, "A", "B", 38)
	_ = file.SetColWidth(expensesSheet, "H", "H", 40)

	if err := e.writeRow(file, summarySheet, 1, toCells([]string{"Status", "Count", "Total"})); err != nil {
		return nil, err
	}
	_ = file.SetRowStyle(summarySheet, 1, 1, headerStyle)

	summary := entity.Summarize(views)
	row := 2
	for _, state := range workflow.AllStates() {
		st := summary.For(state)
		if st.Count == 0 {
			continue
		}
		if err := e.writeRow(file, summarySheet, row, []interface{}{state.String(), st.Count, st.Amount}); err != nil {
			return nil, err
		}
		row++
	}
	if err := e.writeRow(file, summarySheet, row, []interface{}{"TOTAL", summary.Count, summary.Total}); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Expense workbook generated", zap.Int("rows", len(views)), zap.Int("size", buf.Len()))
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// describe renders the variant fields of an expense on one line
func describe(d entity.Details) string {
	switch v := d.(type) {
	case *entity.Travel:
		return fmt.Sprintf("%s -> %s (%.1f km)", v.DepartureLocation, v.ArrivalLocation, v.DistanceKm)
	case *entity.Lodging:
		return fmt.Sprintf("%s, %d night(s) from %s", v.City, v.NightCount, v.StayStart.Format("2006-01-02"))
	case *entity.Meal:
		return v.Category
	default:
		return ""
	}
}

// Verify interface compliance
var _ port.ReportExporter = (*ExcelExporter)(nil)
