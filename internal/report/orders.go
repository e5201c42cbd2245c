// Package report renders order and stock exports for administrators.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
)

const (
	OrdersSheet  = "Orders"
	SummarySheet = "Summary"
)

var orderHeaders = []string{
	"Order ID", "Student ID", "Wash Type", "Detergent", "Clothes", "Given Date", "Return Date", "Status",
}

// OrdersWorkbook builds an xlsx file listing every order plus a per-status
// summary.
func OrdersWorkbook(orders []model.Order, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return nil, err
	}
	writeOrders(file, orders)

	if _, err := file.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	writeSummary(file, orders, generatedAt)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeOrders(file *excelize.File, orders []model.Order) {
	set := func(cell string, value any) {
		_ = file.SetCellValue(OrdersSheet, cell, value)
	}

	for i, header := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, o := range orders {
		row := i + 2
		set(fmt.Sprintf("A%d", row), o.ID)
		set(fmt.Sprintf("B%d", row), o.StudentID)
		set(fmt.Sprintf("C%d", row), o.WashType)
		set(fmt.Sprintf("D%d", row), o.DetergentType)
		set(fmt.Sprintf("E%d", row), o.ClothCount)
		set(fmt.Sprintf("F%d", row), o.GivenDate)
		set(fmt.Sprintf("G%d", row), o.ReturnDate)
		set(fmt.Sprintf("H%d", row), string(o.Status))
	}

	_ = file.SetColWidth(OrdersSheet, "A", "B", 12)
	_ = file.SetColWidth(OrdersSheet, "C", "D", 18)
	_ = file.SetColWidth(OrdersSheet, "F", "H", 14)
}

func writeSummary(file *excelize.File, orders []model.Order, generatedAt time.Time) {
	set := func(cell string, value any) {
		_ = file.SetCellValue(SummarySheet, cell, value)
	}

	counts := make(map[laundry.OrderStatus]int, len(laundry.OrderStatuses))
	for _, o := range orders {
		counts[o.Status]++
	}

	set("A1", "Generated")
	set("B1", generatedAt.UTC().Format(time.RFC3339))
	set("A2", "Total orders")
	set("B2", len(orders))

	set("A4", "Status")
	set("B4", "Orders")
	for i, status := range laundry.OrderStatuses {
		row := 5 + i
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), counts[status])
	}

	_ = file.SetColWidth(SummarySheet, "A", "A", 16)
	_ = file.SetColWidth(SummarySheet, "B", "B", 24)
}
