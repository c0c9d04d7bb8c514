package handlers

import (
	"net/http"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminGetAllOrders returns every submitted order with its history
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	list := []models.Order{}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		q := db.Preload("Items").Preload("StatusHistory").Where("status <> ?", models.StatusCart)
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if accountID := c.Query("account_id"); accountID != "" {
			q = q.Where("account_id = ?", accountID)
		}
		return q.Order("created_at desc").Find(&list).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	summary := map[models.OrderStatus]int{}
	var revenue int64
	for _, o := range list {
		summary[o.Status]++
		if o.Status == models.StatusCompleted {
			if o.TotalDiscountedPrice != nil {
				revenue += *o.TotalDiscountedPrice
			} else {
				revenue += o.TotalPrice
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": revenue,
		"count":         len(list),
		"orders":        list,
	})
}

// AdminGetAllAccounts lists accounts, optionally filtered by role
func (h *Handler) AdminGetAllAccounts(c *gin.Context) {
	accounts := []models.Account{}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		q := db.Order("created_at")
		if role := c.Query("role"); role != "" {
			q = q.Where("role = ?", role)
		}
		return q.Find(&accounts).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(accounts), "accounts": accounts})
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// AdminSetRole changes an account's role; banning is setting banned_user
func (h *Handler) AdminSetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.InvalidInput("invalid account id"))
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		respondError(c, apperr.InvalidInput("unknown role"))
		return
	}

	err = h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Model(&models.Account{}).Where("id = ?", id).Update("role", req.Role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("account not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "account_id": id, "role": req.Role})
}
