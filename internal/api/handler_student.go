package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
	"campus-laundry-backend/internal/parse"
)

// StudentDashboard shows the action cards and a short summary.
func (h *Handler) StudentDashboard(c *gin.Context) {
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

	active := 0
	for _, o := range orders {
		if o.Status != laundry.OrderDelivered {
			active++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"username":          s.Username,
		"cards":             studentCards,
		"activeOrders":      active,
		"pendingComplaints": complaintCounts(complaints)[laundry.ComplaintPending],
	})
}

// StudentOrders lists the student's orders. ?new=true opens the order form.
func (h *Handler) StudentOrders(c *gin.Context) {
	s := currentSession(c)
	orders, err := h.store.ListOrders(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":         orders,
		"dialogOpen":     parse.Flag(c.Query("new")),
		"washTypes":      laundry.WashTypes,
		"detergentTypes": laundry.DetergentTypes,
	})
}

// CreateOrder places a new Pending order dated today.
func (h *Handler) CreateOrder(c *gin.Context) {
	s := currentSession(c)

	var draft laundry.OrderDraft
	if err := bind(c, &draft); err != nil {
		h.handleError(c, err)
		return
	}
	draft.WashType = parse.WashType(draft.WashType)
	if err := draft.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	given, returned := laundry.OrderDates(h.now(), h.returnAfterDays)
	order, err := h.store.CreateOrder(c.Request.Context(), s.Token, model.Order{
		StudentID:     s.Username,
		WashType:      draft.WashType,
		DetergentType: draft.DetergentType,
		ClothCount:    draft.ClothCount,
		GivenDate:     given,
		ReturnDate:    returned,
		Status:        laundry.OrderPending,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.metrics.OrdersCreated.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"notice": Notice{
			Title:       "Order Placed",
			Description: fmt.Sprintf("Order #%s has been placed successfully", order.ID),
		},
	})
}

// StudentComplaints lists the student's complaints, newest first.
func (h *Handler) StudentComplaints(c *gin.Context) {
	s := currentSession(c)
	complaints, err := h.store.ListComplaints(c.Request.Context(), s.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// CreateComplaint files a new Pending complaint dated today.
func (h *Handler) CreateComplaint(c *gin.Context) {
	s := currentSession(c)

	var draft laundry.ComplaintDraft
	if err := bind(c, &draft); err != nil {
		h.handleError(c, err)
		return
	}
	if err := draft.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	complaint, err := h.store.CreateComplaint(c.Request.Context(), s.Token, model.Complaint{
		StudentID:   s.Username,
		Subject:     draft.Subject,
		Description: draft.Description,
		Date:        h.now().Format(laundry.DateLayout),
		Status:      laundry.ComplaintPending,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.metrics.ComplaintsCreated.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"complaint": complaint,
		"notice": Notice{
			Title:       "Complaint Submitted",
			Description: fmt.Sprintf("Complaint #%s has been submitted successfully", complaint.ID),
		},
	})
}
