package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
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

// ── Restaurant Management ────────────────────────────────────────────────────

type RestaurantRequest struct {
	Name      string   `json:"name" binding:"required"`
	Rating    float64  `json:"rating" binding:"min=0,max=5"`
	Distance  float64  `json:"distance" binding:"min=0"`
	Tags      []string `json:"tags"`
	Image     string   `json:"image"`
	Address   string   `json:"address" binding:"required"`
	City      string   `json:"city" binding:"required"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	// NationalID registers the creator as owner in the same transaction
	NationalID string `json:"national_id"`
}

func (r *RestaurantRequest) apply(m *models.Restaurant) {
	m.Name = r.Name
	m.Rating = r.Rating
	m.Distance = r.Distance
	m.Tags = r.Tags
	m.Image = r.Image
	m.Address = r.Address
	m.City = strings.ToLower(r.City)
	m.Latitude = r.Latitude
	m.Longitude = r.Longitude
}

// CreateRestaurant is open to admins and restaurant owners
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionCreateRestaurant, 0) {
		return
	}

	accountID := middleware.GetAccountID(c)
	var restaurant models.Restaurant
	req.apply(&restaurant)
	err := h.Store.Tx(c.Request.Context(), func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		if req.NationalID == "" {
			return nil
		}
		return tx.Create(&models.Owner{
			RestaurantID: restaurant.ID,
			AccountID:    accountID,
			NationalID:   req.NationalID,
		}).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// UpdateRestaurant replaces restaurant details (admin or owner)
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, id) {
		return
	}

	var restaurant models.Restaurant
	req.apply(&restaurant)
	err := h.Store.Tx(c.Request.Context(), func(tx *gorm.DB) error {
		res := tx.Model(&models.Restaurant{}).Where("id = ?", id).
			Select("name", "rating", "distance", "tags", "image", "address", "city", "latitude", "longitude").
			Updates(&restaurant)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("restaurant not found")
		}
		return tx.First(&restaurant, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

// DeleteRestaurant removes a restaurant; food, hours, owners and comments cascade
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, id) {
		return
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Delete(&models.Restaurant{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("restaurant not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted"})
}

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// saveImage stores the multipart "file" under the upload dir and returns its url
func (h *Handler) saveImage(c *gin.Context) (string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.InvalidInput("no file provided"))
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		respondError(c, apperr.InvalidInput("unsupported image type"))
		return "", false
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, name)); err != nil {
		respondError(c, apperr.Infra("write file", err))
		return "", false
	}
	return "/uploads/" + name, true
}

// UploadRestaurantImage stores a multipart "file" and points the restaurant at it
func (h *Handler) UploadRestaurantImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, id) {
		return
	}
	url, ok := h.saveImage(c)
	if !ok {
		return
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Model(&models.Restaurant{}).Where("id = ?", id).Update("image", url)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("restaurant not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded", "image": url})
}

// UploadFoodImage is UploadRestaurantImage for one menu item
func (h *Handler) UploadFoodImage(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	foodID, ok := paramID(c, "foodId")
	if !ok {
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}
	url, ok := h.saveImage(c)
	if !ok {
		return
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Model(&models.Food{}).
			Where("id = ? AND restaurant_id = ?", foodID, rid).
			Update("image", url)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("food not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded", "image": url})
}

// ── Menu Management ─────────────────────────────────────────────────────────

type FoodRequest struct {
	Name          string   `json:"name" binding:"required"`
	Image         string   `json:"image"`
	Tag           string   `json:"tag"`
	Price         int64    `json:"price" binding:"required,gt=0"`
	Discount      *int     `json:"discount" binding:"omitempty,min=0,max=100"`
	DiscountPrice *int64   `json:"discount_price" binding:"omitempty,gt=0"`
	Ingredient    []string `json:"ingredient"`
	Available     *bool    `json:"available"`
}

func (r *FoodRequest) apply(f *models.Food) {
	f.Name = r.Name
	f.Image = r.Image
	f.Tag = r.Tag
	f.Price = r.Price
	f.Discount = r.Discount
	f.DiscountPrice = r.DiscountPrice
	f.Ingredient = r.Ingredient
	f.Available = r.Available == nil || *r.Available
}

// AddFood adds an item to a restaurant's menu
func (h *Handler) AddFood(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}

	food := models.Food{RestaurantID: rid}
	req.apply(&food)
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		err := db.Create(&food).Error
		if err != nil && store.IsForeignKeyViolation(err) {
			return apperr.NotFound("restaurant not found")
		}
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food added", "food": food})
}

// UpdateFood replaces a menu item of the restaurant
func (h *Handler) UpdateFood(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	foodID, ok := paramID(c, "foodId")
	if !ok {
		return
	}
	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}

	var food models.Food
	req.apply(&food)
	err := h.Store.Tx(c.Request.Context(), func(tx *gorm.DB) error {
		res := tx.Model(&models.Food{}).Where("id = ? AND restaurant_id = ?", foodID, rid).
			Select("name", "image", "tag", "price", "discount", "discount_price", "ingredient", "available").
			Updates(&food)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("food not found")
		}
		return tx.First(&food, foodID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food updated", "food": food})
}

// DeleteFood removes a menu item
func (h *Handler) DeleteFood(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	foodID, ok := paramID(c, "foodId")
	if !ok {
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Where("id = ? AND restaurant_id = ?", foodID, rid).Delete(&models.Food{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("food not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food deleted"})
}

// ── Operating Hours ─────────────────────────────────────────────────────────

type HoursRequest struct {
	DayOfWeek models.Weekday `json:"day_of_week" binding:"required"`
	OpenTime  string         `json:"open_time" binding:"required"`
	CloseTime string         `json:"close_time" binding:"required"`
}

func (r *HoursRequest) validate() error {
	if !r.DayOfWeek.Valid() {
		return apperr.InvalidInput("invalid day_of_week")
	}
	open, err := time.Parse("15:04", r.OpenTime)
	if err != nil {
		return apperr.InvalidInput("open_time must be HH:MM")
	}
	closing, err := time.Parse("15:04", r.CloseTime)
	if err != nil {
		return apperr.InvalidInput("close_time must be HH:MM")
	}
	if !closing.After(open) {
		return apperr.InvalidInput("close_time must be after open_time")
	}
	return nil
}

// PostHours adds opening hours for a day that has none yet
func (h *Handler) PostHours(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req HoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}

	hours := models.OpenHours{RestaurantID: rid, DayOfWeek: req.DayOfWeek, OpenTime: req.OpenTime, CloseTime: req.CloseTime}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		err := db.Create(&hours).Error
		switch {
		case err == nil:
			return nil
		case store.IsUniqueViolation(err):
			return apperr.Conflict("hours for this day already exist")
		case store.IsForeignKeyViolation(err):
			return apperr.NotFound("restaurant not found")
		}
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hours": hours})
}

// PutHours changes the opening hours of one day
func (h *Handler) PutHours(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req HoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}

	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Model(&models.OpenHours{}).
			Where("restaurant_id = ? AND day_of_week = ?", rid, req.DayOfWeek).
			Updates(map[string]interface{}{"open_time": req.OpenTime, "close_time": req.CloseTime})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("hours not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hours updated", "hours": req})
}

// DeleteHours removes the opening hours of one day
func (h *Handler) DeleteHours(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	day := models.Weekday(strings.ToLower(c.Param("day")))
	if !day.Valid() {
		respondError(c, apperr.InvalidInput("invalid day_of_week"))
		return
	}
	if !h.guard(c, access.ActionModifyRestaurant, rid) {
		return
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		res := db.Where("restaurant_id = ? AND day_of_week = ?", rid, day).Delete(&models.OpenHours{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("hours not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hours deleted"})
}
