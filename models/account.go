package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is an account's capability class
type Role string

const (
	RoleCustomer        Role = "customer"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleBannedUser      Role = "banned_user"
	RoleAdmin           Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleBannedUser, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID           uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	PhoneNumber  *string   `json:"phone_number,omitempty" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;default:'customer'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
