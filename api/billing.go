package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avstation/stationd/core/model"
)

// BillingStats handles GET /api/billing/stats.
func (h *Handler) BillingStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.billing.RevenueStats())
}

type rateUpdateRequest struct {
	Rate float64 `json:"rate" binding:"required"`
}

// UpdateRate handles PUT /api/billing/rates/:category, retuning the energy
// price of one vehicle category at runtime.
func (h *Handler) UpdateRate(c *gin.Context) {
	category, err := model.ParseVehicleType(c.Param("category"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req rateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.billing.UpdateRate(category, req.Rate); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category.String(), "rate": req.Rate})
}
