package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	settlement "dogschool-admin/internal/settlement/domain"
)

const exportDateLayout = "2006-01-02"

// BuildStatementPDF renders a trainer invoice for a statement.
func BuildStatementPDF(stmt *settlement.Statement, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Trainer Settlement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Trainer: %s", stmt.TrainerID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %s", stmt.Month))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", stmt.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	if stmt.Snapshot != nil && stmt.Snapshot.PaidAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Paid: %s", stmt.Snapshot.PaidAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Client", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, c := range stmt.Concepts {
		pdf.CellFormat(30, 6, c.Date.Format(exportDateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, string(c.Kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, clientLabel(c), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, c.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", c.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	totals := stmt.Totals
	for _, line := range []struct {
		label string
		value float64
	}{
		{"Taxable base (blocks)", totals.BaseBlocks},
		{"Evaluation deductions", totals.EvaluationsDeducted},
		{"Reduced base", totals.ReducedBase},
		{"VAT", totals.VAT},
		{"Total", totals.Total},
	} {
		pdf.CellFormat(100, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", line.value), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if stmt.Drift {
		pdf.Ln(4)
		pdf.Cell(0, 6, fmt.Sprintf("Note: live total %.2f differs from the recorded settlement.", stmt.Live.Total))
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders a summary sheet and a concepts sheet.
func BuildStatementXLSX(stmt *settlement.Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	summarySheet := "summary"
	conceptsSheet := "concepts"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(conceptsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Trainer Settlement")
	summary := [][2]any{
		{"Trainer", stmt.TrainerID},
		{"Month", stmt.Month},
		{"Status", stmt.Status},
		{"Blocks", stmt.Totals.Blocks},
		{"Evaluations", stmt.Totals.Evaluations},
		{"Taxable base (blocks)", stmt.Totals.BaseBlocks},
		{"Evaluation deductions", stmt.Totals.EvaluationsDeducted},
		{"Reduced base", stmt.Totals.ReducedBase},
		{"VAT", stmt.Totals.VAT},
		{"Total", stmt.Totals.Total},
		{"Live total", stmt.Live.Total},
		{"Drift", stmt.Drift},
	}
	for i, pair := range summary {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), pair[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), pair[1])
	}

	_ = f.SetCellValue(conceptsSheet, "A1", "Date")
	_ = f.SetCellValue(conceptsSheet, "B1", "Type")
	_ = f.SetCellValue(conceptsSheet, "C1", "Client")
	_ = f.SetCellValue(conceptsSheet, "D1", "Description")
	_ = f.SetCellValue(conceptsSheet, "E1", "Amount")
	for i, c := range stmt.Concepts {
		row := i + 2
		_ = f.SetCellValue(conceptsSheet, fmt.Sprintf("A%d", row), c.Date.Format(exportDateLayout))
		_ = f.SetCellValue(conceptsSheet, fmt.Sprintf("B%d", row), string(c.Kind))
		_ = f.SetCellValue(conceptsSheet, fmt.Sprintf("C%d", row), clientLabel(c))
		_ = f.SetCellValue(conceptsSheet, fmt.Sprintf("D%d", row), c.Description)
		_ = f.SetCellValue(conceptsSheet, fmt.Sprintf("E%d", row), c.Amount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clientLabel(c settlement.Concept) string {
	if c.ClientName != "" {
		return c.ClientName
	}
	return c.ClientID
}
