package handlers

import (
	"net/http"
	"time"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	AccountID    string `json:"account_id"`
	NationalID   string `json:"national_id" binding:"required"`
}

// CreateOwner registers an account as owner of a restaurant. Claiming an
// unowned restaurant for yourself only needs the role; anything else needs
// modify rights on the restaurant. Roles are left untouched.
func (h *Handler) CreateOwner(c *gin.Context) {
	var req OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller := middleware.GetAccountID(c)
	target := caller
	if req.AccountID != "" {
		id, err := uuid.Parse(req.AccountID)
		if err != nil {
			respondError(c, apperr.InvalidInput("invalid account_id"))
			return
		}
		target = id
	}

	ctx := c.Request.Context()
	now := time.Now()
	owner := models.Owner{RestaurantID: req.RestaurantID, AccountID: target, NationalID: req.NationalID, CreatedAt: now}

	// A self-claim inserts only while the restaurant has no owner, so two
	// concurrent claims cannot both succeed.
	if target == caller {
		var claimed bool
		err := h.Store.Tx(ctx, func(tx *gorm.DB) error {
			res := tx.Exec(`INSERT INTO owners (restaurant_id, account_id, national_id, created_at)
				SELECT id, ?, ?, ? FROM restaurants
				WHERE id = ? AND NOT EXISTS (SELECT 1 FROM owners WHERE restaurant_id = ?)`,
				target, req.NationalID, now, req.RestaurantID, req.RestaurantID)
			if res.Error != nil {
				if store.IsUniqueViolation(res.Error) {
					return apperr.Conflict("account already owns this restaurant")
				}
				return res.Error
			}
			claimed = res.RowsAffected == 1
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if claimed {
			c.JSON(http.StatusCreated, gin.H{"message": "Owner registered", "owner": owner})
			return
		}
	}

	if !h.guard(c, access.ActionModifyRestaurant, req.RestaurantID) {
		return
	}
	err := h.Store.Tx(ctx, func(tx *gorm.DB) error {
		return createOwner(tx, &owner)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Owner registered", "owner": owner})
}

// createOwner inserts o and checks that its account exists
func createOwner(tx *gorm.DB, o *models.Owner) error {
	if err := tx.Create(o).Error; err != nil {
		switch {
		case store.IsUniqueViolation(err):
			return apperr.Conflict("account already owns this restaurant")
		case store.IsForeignKeyViolation(err):
			return apperr.NotFound("restaurant or account not found")
		}
		return err
	}
	var n int64
	if err := tx.Model(&models.Account{}).Where("id = ?", o.AccountID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}

// GetMyOwnerships lists the restaurants the caller owns
func (h *Handler) GetMyOwnerships(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	restaurants := []models.Restaurant{}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.Joins("JOIN owners ON owners.restaurant_id = restaurants.id").
			Where("owners.account_id = ?", accountID).
			Order("restaurants.id").Find(&restaurants).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

type NationalIDRequest struct {
	NationalID string `json:"national_id" binding:"required"`
}

// UpdateOwnerNationalID changes the caller's national id on one restaurant
func (h *Handler) UpdateOwnerNationalID(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req NationalIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}
	accountID := middleware.GetAccountID(c)
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Model(&models.Owner{}).
			Where("restaurant_id = ? AND account_id = ?", rid, accountID).
			Update("national_id", req.NationalID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("owner not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner updated"})
}

type ReplaceOwnerRequest struct {
	AccountID  string `json:"account_id" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
}

// ReplaceOwner hands a restaurant over to another account. Every existing
// ownership row is dropped in the same transaction.
func (h *Handler) ReplaceOwner(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReplaceOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := uuid.Parse(req.AccountID)
	if err != nil {
		respondError(c, apperr.InvalidInput("invalid account_id"))
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}

	owner := models.Owner{RestaurantID: rid, AccountID: target, NationalID: req.NationalID}
	err = h.Store.Tx(c.Request.Context(), func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", rid).Delete(&models.Owner{}).Error; err != nil {
			return err
		}
		return createOwner(tx, &owner)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner replaced", "owner": owner})
}
