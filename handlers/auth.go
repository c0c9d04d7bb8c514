package handlers

import (
	"errors"
	"net/http"

	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,e164"`
	Password    string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func accountView(a *models.Account) gin.H {
	return gin.H{
		"id":           a.ID,
		"name":         a.Name,
		"email":        a.Email,
		"phone_number": a.PhoneNumber,
		"role":         a.Role,
	}
}

// Register creates a customer account; other roles are granted by admins
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" && req.PhoneNumber == "" {
		respondError(c, apperr.InvalidInput("please provide email or phone number"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	account := models.Account{
		Name:         req.Name,
		Email:        optional(req.Email),
		PhoneNumber:  optional(req.PhoneNumber),
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	}
	err = h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.Create(&account).Error
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(c, apperr.Conflict("account already exists"))
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.Auth.GenerateToken(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"account": accountView(&account),
	})
}

// Login authenticates by email or phone number and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" && req.PhoneNumber == "" {
		respondError(c, apperr.InvalidInput("please provide email or phone number"))
		return
	}

	var account models.Account
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		if req.Email != "" {
			return db.Where("email = ?", req.Email).First(&account).Error
		}
		return db.Where("phone_number = ?", req.PhoneNumber).First(&account).Error
	})
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credentials"})
		return
	}

	token, err := h.Auth.GenerateToken(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"account": accountView(&account),
	})
}

// GetProfile returns the authenticated account
func (h *Handler) GetProfile(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	var account models.Account
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		return db.First(&account, "id = ?", accountID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": accountView(&account)})
}
