package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-laundry-backend/internal/laundry"
)

// Catalog lists the fixed choices offered by the forms.
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles":          laundry.Roles,
		"washTypes":      laundry.WashTypes,
		"detergentTypes": laundry.DetergentTypes,
		"orderStatuses":  laundry.OrderStatuses,
	})
}
