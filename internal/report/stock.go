package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
)

const fontName = "Helvetica"

var (
	stockHeaders   = []string{"Item", "Current", "Minimum", "Unit", "Level", "Fill"}
	stockColWidths = []float64{60, 25, 25, 20, 25, 25}
)

// StockPDF renders the stock table with each item's level and fill
// percentage.
func StockPDF(items []model.Stock, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, "Detergent Stock Report", "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawRow(pdf, stockHeaders, true)

	low := 0
	for _, item := range items {
		level := laundry.Classify(item.CurrentStock, item.MinThreshold)
		if level == laundry.StockLow {
			low++
		}
		drawRow(pdf, []string{
			item.DetergentType,
			fmt.Sprintf("%d", item.CurrentStock),
			fmt.Sprintf("%d", item.MinThreshold),
			item.Unit,
			string(level),
			fmt.Sprintf("%.0f%%", laundry.Percentage(item.CurrentStock, item.MinThreshold)),
		}, false)
	}

	pdf.Ln(4)
	pdf.SetFont(fontName, "", 11)
	if low > 0 {
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d item(s) at or below minimum stock. Reorder soon.", low), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	} else {
		pdf.MultiCell(0, 6, "All items are above minimum stock.", "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render stock report: %w", err)
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *gofpdf.Fpdf, cols []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && i != 3 {
			align = "R"
		}
		pdf.CellFormat(stockColWidths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
