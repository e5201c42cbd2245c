package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/model"
	"campus-laundry-backend/internal/parse"
	"campus-laundry-backend/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// AdminDashboard summarizes the session's orders, complaints and stock.
func (h *Handler) AdminDashboard(c *gin.Context) {
	s := currentSession(c)
	ctx := c.Request.Context()

	orders, err := h.store.ListOrders(ctx, s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	complaints, err := h.store.ListComplaints(ctx, s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	items, err := h.store.ListStock(ctx, s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalOrders":       len(orders),
		"pendingOrders":     orderCounts(orders)[laundry.OrderPending],
		"pendingComplaints": complaintCounts(complaints)[laundry.ComplaintPending],
		"stockPercentage":   averagePercentage(items),
		"recentOrders":      recentOrders(orders, 3),
		"recentComplaints":  pendingComplaints(complaints, 2),
	})
}

// AdminOrders lists every order with its allowed next status.
func (h *Handler) AdminOrders(c *gin.Context) {
	s := currentSession(c)
	orders, err := h.store.ListOrders(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": toAdminOrders(orders),
		"counts": orderCounts(orders),
		"total":  len(orders),
	})
}

// AdvanceOrder moves an order one step forward. Delivered orders are left
// alone and reported with changed=false.
func (h *Handler) AdvanceOrder(c *gin.Context) {
	s := currentSession(c)
	order, changed, err := h.store.AdvanceOrder(c.Request.Context(), s.Token, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := gin.H{"order": toAdminOrders([]model.Order{order})[0], "changed": changed}
	if changed {
		h.metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
		resp["notice"] = orderNotice(order.ID, order.Status)
	}
	c.JSON(http.StatusOK, resp)
}

type setStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// SetOrderStatus applies an explicit status change. Only the next status in
// the lifecycle is accepted.
func (h *Handler) SetOrderStatus(c *gin.Context) {
	s := currentSession(c)

	var req setStatusRequest
	if err := bind(c, &req); err != nil {
		h.handleError(c, err)
		return
	}
	target, err := laundry.ParseOrderStatus(req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	order, err := h.store.SetOrderStatus(c.Request.Context(), s.Token, c.Param("id"), target)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"order":  toAdminOrders([]model.Order{order})[0],
		"notice": orderNotice(order.ID, order.Status),
	})
}

func orderNotice(id string, status laundry.OrderStatus) Notice {
	return Notice{
		Title:       "Status Updated",
		Description: fmt.Sprintf("Order #%s marked as %s", id, status),
	}
}

// ExportOrders downloads the session's orders as a spreadsheet.
func (h *Handler) ExportOrders(c *gin.Context) {
	s := currentSession(c)
	orders, err := h.store.ListOrders(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	now := h.now()
	content, err := report.OrdersWorkbook(orders, now)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "orders-" + now.Format(laundry.DateLayout) + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, content)
}

// AdminComplaints lists all complaints with per-status counts.
func (h *Handler) AdminComplaints(c *gin.Context) {
	s := currentSession(c)
	complaints, err := h.store.ListComplaints(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"counts":     complaintCounts(complaints),
	})
}

// ResolveComplaint marks a complaint resolved. Repeating it is harmless.
func (h *Handler) ResolveComplaint(c *gin.Context) {
	s := currentSession(c)
	complaint, changed, err := h.store.ResolveComplaint(c.Request.Context(), s.Token, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := gin.H{"complaint": complaint, "changed": changed}
	if changed {
		h.metrics.ComplaintsResolved.Inc()
		resp["notice"] = Notice{
			Title:       "Complaint Resolved",
			Description: fmt.Sprintf("Complaint #%s has been marked as resolved", complaint.ID),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// AdminStock lists stock with levels and the items needing a reorder.
func (h *Handler) AdminStock(c *gin.Context) {
	s := currentSession(c)
	items, err := h.store.ListStock(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	rows := toStockRows(items)
	alerts := []stockRow{}
	for _, row := range rows {
		if row.Level == laundry.StockLow {
			alerts = append(alerts, row)
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": rows, "alerts": alerts})
}

type adjustRequest struct {
	Delta  *int   `json:"delta" form:"delta"`
	Amount string `json:"amount" form:"amount"`
}

// AdjustStock changes an item's quantity by a signed delta. The result never
// goes below zero.
func (h *Handler) AdjustStock(c *gin.Context) {
	s := currentSession(c)

	var req adjustRequest
	if err := bind(c, &req); err != nil {
		h.handleError(c, err)
		return
	}

	var delta int
	switch {
	case req.Delta != nil:
		delta = *req.Delta
	case req.Amount != "":
		d, err := parse.Amount(req.Amount)
		if err != nil {
			h.handleError(c, err)
			return
		}
		delta = d
	default:
		h.handleError(c, fmt.Errorf("%w: %s", laundry.ErrInvalidInput, laundry.MissingFieldsMessage))
		return
	}

	item, err := h.store.AdjustStock(c.Request.Context(), s.Token, c.Param("id"), delta)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := gin.H{"item": toStockRow(item)}
	if delta != 0 {
		h.metrics.StockAdjustments.WithLabelValues(metrics.Direction(delta)).Inc()
		verb := "increased"
		if delta < 0 {
			verb = "decreased"
		}
		resp["notice"] = Notice{
			Title:       "Stock Updated",
			Description: fmt.Sprintf("%s stock %s by %d %s", item.DetergentType, verb, magnitude(delta), item.Unit),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// StockReport downloads the stock table as a PDF.
func (h *Handler) StockReport(c *gin.Context) {
	s := currentSession(c)
	items, err := h.store.ListStock(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	now := h.now()
	content, err := report.StockPDF(items, now)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "stock-" + now.Format(laundry.DateLayout) + ".pdf"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, pdfContentType, content)
}

// magnitude is |n| without overflowing on math.MinInt.
func magnitude(n int) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
