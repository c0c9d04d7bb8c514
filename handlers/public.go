package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination reads ?start=&end= into offset and limit
func pagination(c *gin.Context) (offset, limit int, err error) {
	start, end := 0, defaultPageSize
	if v := c.Query("start"); v != "" {
		if start, err = strconv.Atoi(v); err != nil || start < 0 {
			return 0, 0, apperr.InvalidInput("invalid start")
		}
		end = start + defaultPageSize
	}
	if v := c.Query("end"); v != "" {
		if end, err = strconv.Atoi(v); err != nil || end <= start {
			return 0, 0, apperr.InvalidInput("invalid end")
		}
	}
	limit = end - start
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return start, limit, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListRestaurants returns a page of restaurants, optionally filtered by city or tag
func (h *Handler) ListRestaurants(c *gin.Context) {
	offset, limit, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	restaurants := []models.Restaurant{}
	err = h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		query := db.Model(&models.Restaurant{})
		if city := c.Query("city"); city != "" {
			query = query.Where("LOWER(city) = ?", strings.ToLower(city))
		}
		if tag := c.Query("tag"); tag != "" {
			// tags are stored as a JSON array
			query = query.Where("EXISTS (SELECT 1 FROM json_each(restaurants.tags) WHERE json_each.value = ?)", tag)
		}
		if search := c.Query("search"); search != "" {
			query = query.Where(`name LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(search)+"%")
		}
		return query.Order("id").Offset(offset).Limit(limit).Find(&restaurants).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant with its hours
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.Preload("Hours").First(&restaurant, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetMenu returns the food of a restaurant
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	foods := []models.Food{}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		query := db.Where("restaurant_id = ?", id)
		if tag := c.Query("tag"); tag != "" {
			query = query.Where("tag = ?", tag)
		}
		if c.Query("available") == "true" {
			query = query.Where("available = ?", true)
		}
		return query.Order("id").Find(&foods).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "menu": foods})
}

// GetHours returns a restaurant's weekly opening hours
func (h *Handler) GetHours(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	hours := []models.OpenHours{}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.Where("restaurant_id = ?", id).Order("id").Find(&hours).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hours": hours})
}

// GetStateMachineInfo returns the order lifecycle for documentation
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusCompleted, models.StatusCanceled},
		"description":     "Marketplace Order Lifecycle State Machine",
	})
}
