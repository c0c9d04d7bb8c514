package handlers

import (
	"errors"
	"net/http"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"
	"food-marketplace-api/cart"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCart returns the caller's open cart, creating it on first use
func (h *Handler) CreateCart(c *gin.Context) {
	if !h.guard(c, access.ActionParticipate, 0) {
		return
	}
	id, err := h.Cart.GetOrCreate(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id})
}

type CartItemRequest struct {
	OrderID  uint `json:"order_id" binding:"required"`
	FoodID   uint `json:"food_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// AddToCart applies a quantity delta; name, image and prices are copied from the menu
func (h *Handler) AddToCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionParticipate, 0) {
		return
	}

	var food models.Food
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.First(&food, req.FoodID).Error
	})
	if errors.Is(err, apperr.ErrNotFound) {
		respondError(c, apperr.NotFound("food not found"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if !food.Available && req.Quantity > 0 {
		respondError(c, apperr.InvalidInput("food '"+food.Name+"' is not available"))
		return
	}

	accountID := middleware.GetAccountID(c)
	err = h.Cart.AddItem(c.Request.Context(), accountID, cart.NewItem{
		OrderID:       req.OrderID,
		FoodID:        food.ID,
		RestaurantID:  food.RestaurantID,
		Quantity:      req.Quantity,
		Name:          food.Name,
		Image:         food.Image,
		Price:         food.Price,
		DiscountPrice: food.DiscountPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := h.Cart.Get(c.Request.Context(), accountID, req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": snap})
}

// GetOrder returns one of the caller's orders with items and totals
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	snap, err := h.Cart.Get(c.Request.Context(), middleware.GetAccountID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": snap})
}

// Checkout submits the caller's cart with a payment record
func (h *Handler) Checkout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var pay orders.PaymentInput
	if err := c.ShouldBindJSON(&pay); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !pay.Cash && pay.TransactionID == nil {
		respondError(c, apperr.InvalidInput("transaction_id is required for card payments"))
		return
	}
	if !h.guard(c, access.ActionParticipate, 0) {
		return
	}
	snap, err := h.Orders.Checkout(c.Request.Context(), middleware.GetAccountID(c), id, pay)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order placed", "order": snap})
}

// GetMyOrders returns all orders of the caller, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	list, err := h.Orders.ListForAccount(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}
