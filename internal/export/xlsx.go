// Package export writes the final row set as a single-sheet xlsx workbook
// with the fixed review-column schema.
package export

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/polyscan/scanner/internal/domain"
)

// Columns is the export schema, in exact output order.
var Columns = []string{
	"Event_Title",
	"Market_Question",
	"Outcome",
	"YES_Price",
	"NO_Price",
	"Certainty_Side",
	"Category",
	"Subcategory",
	"Volume",
	"Liquidity",
	"Resolve_DateTime",
	"Hours_Remaining",
	"Market_URL",
	"AI_Confidence",
	"AI_Rationale",
}

// timeLayout is how Resolve_DateTime renders in the sheet.
const timeLayout = "2006-01-02 15:04:05 MST"

// XLSXWriter builds review workbooks for finalized row sets.
type XLSXWriter struct {
	sheet string
}

// NewXLSXWriter creates a writer that names its single sheet as given.
func NewXLSXWriter(sheet string) *XLSXWriter {
	if sheet == "" {
		sheet = "Markets"
	}
	return &XLSXWriter{sheet: sheet}
}

// Build renders the complete workbook in memory and returns its bytes. Nothing
// touches disk here, so a failure can never leave a truncated file behind.
func (w *XLSXWriter) Build(rows []domain.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	if err := w.writeHeader(f); err != nil {
		return nil, err
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "1265BE", Underline: "single"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: link style: %w", err)
	}

	for i, row := range rows {
		if err := w.writeRow(f, i+2, row, linkStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile builds the workbook and writes it to path in one shot.
func (w *XLSXWriter) WriteFile(path string, rows []domain.Row) ([]byte, error) {
	data, err := w.Build(rows)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("export: write %s: %w", path, err)
	}
	return data, nil
}

func (w *XLSXWriter) writeHeader(f *excelize.File) error {
	for col, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(w.sheet, cell, name); err != nil {
			return fmt.Errorf("export: write header %s: %w", name, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(w.sheet, "A1", last, style); err != nil {
		return fmt.Errorf("export: apply header style: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeRow(f *excelize.File, rowNum int, row domain.Row, linkStyle int) error {
	values := []any{
		row.EventTitle,
		row.Question,
		row.Outcome,
		optionalPrice(row.YesPrice),
		optionalPrice(row.NoPrice),
		row.CertaintySide,
		row.Category,
		row.Subcategory,
		row.Volume,
		row.Liquidity,
		row.ResolveTime.UTC().Format(timeLayout),
		row.HoursRemaining,
		row.MarketURL,
		row.AIConfidence,
		row.AIRationale,
	}

	var urlCell string
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if Columns[col] == "Market_URL" {
			urlCell = cell
		}
		if v == nil {
			continue // optional price left blank
		}
		if err := f.SetCellValue(w.sheet, cell, v); err != nil {
			return fmt.Errorf("export: write row %d col %s: %w", rowNum, Columns[col], err)
		}
	}

	// The URL must be an activatable hyperlink, not plain text.
	if err := f.SetCellHyperLink(w.sheet, urlCell, row.MarketURL, "External"); err != nil {
		return fmt.Errorf("export: hyperlink row %d: %w", rowNum, err)
	}
	if err := f.SetCellStyle(w.sheet, urlCell, urlCell, linkStyle); err != nil {
		return fmt.Errorf("export: hyperlink style row %d: %w", rowNum, err)
	}
	return nil
}

// optionalPrice converts a nullable price to a cell value, nil meaning blank.
func optionalPrice(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// DefaultFilename returns a dated workbook name like
// "near_certain_2026-08-30.xlsx".
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("near_certain_%s.xlsx", now.UTC().Format("2006-01-02"))
}
