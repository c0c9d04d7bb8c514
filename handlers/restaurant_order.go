package handlers

import (
	"net/http"

	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetRestaurantOrders returns submitted orders holding items of the restaurant
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	status := models.OrderStatus(c.Query("status"))
	list, err := h.Orders.ListForRestaurant(c.Request.Context(), middleware.GetAccountID(c), rid, status)
	if err != nil {
		respondError(c, err)
		return
	}

	// dashboard summary
	summary := map[models.OrderStatus]int{}
	for _, o := range list {
		summary[o.Status]++
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant_id": rid,
		"order_summary": summary,
		"count":         len(list),
		"orders":        list,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus completes or cancels a pending order
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prev, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.GetAccountID(c), id, req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated",
		"order_id":          id,
		"previous_status":   prev,
		"current_status":    req.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(req.Status),
	})
}
