package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers the browser for low-stock alerts on the current
// session. Re-registering an endpoint replaces its keys.
func (h *Handler) PutSubscription(c *gin.Context) {
	s := currentSession(c)

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.SaveSubscription(c.Request.Context(), model.PushSubscription{
		Endpoint:  req.Endpoint,
		SessionID: s.Token,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the session's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	s := currentSession(c)

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetSubscription(ctx, s.Token, req.Endpoint); err != nil {
		h.handleError(c, err)
		return
	}
	if err := h.store.DeleteSubscription(ctx, req.Endpoint); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription reports whether the endpoint is registered on the session.
func (h *Handler) GetSubscription(c *gin.Context) {
	s := currentSession(c)

	endpoint := strings.TrimSpace(c.Query("endpoint"))
	if endpoint == "" {
		h.handleError(c, fmt.Errorf("%w: endpoint is required", laundry.ErrInvalidInput))
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), s.Token, endpoint)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "subscribed": true})
}
