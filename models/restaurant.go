package models

import (
	"time"

	"github.com/google/uuid"
)

type Restaurant struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Name      string      `json:"name" gorm:"not null"`
	Rating    float64     `json:"rating" gorm:"default:0"`
	Distance  float64     `json:"distance"`
	Tags      []string    `json:"tags" gorm:"serializer:json"`
	Image     string      `json:"image"`
	Address   string      `json:"address"`
	City      string      `json:"city" gorm:"index"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Foods     []Food      `json:"foods,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Owners    []Owner     `json:"-" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Hours     []OpenHours `json:"hours,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Comments  []Comment   `json:"-" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Food struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	RestaurantID  uint      `json:"restaurant_id" gorm:"not null;index"`
	Name          string    `json:"name" gorm:"not null"`
	Image         string    `json:"image"`
	Tag           string    `json:"tag"`
	Price         int64     `json:"price" gorm:"not null"`
	Discount      *int      `json:"discount"` // percent
	DiscountPrice *int64    `json:"discount_price"`
	Ingredient    []string  `json:"ingredient" gorm:"serializer:json"`
	Available     bool      `json:"available" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Owner grants an account modify rights over one restaurant, independent of role
type Owner struct {
	RestaurantID uint      `json:"restaurant_id" gorm:"primaryKey"`
	AccountID    uuid.UUID `json:"account_id" gorm:"type:text;primaryKey;index"`
	NationalID   string    `json:"national_id" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

type Weekday string

const (
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

func (d Weekday) Valid() bool {
	switch d {
	case Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// OpenHours times are "15:04" wall-clock strings
type OpenHours struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	RestaurantID uint    `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_hours_restaurant_day"`
	DayOfWeek    Weekday `json:"day_of_week" gorm:"not null;uniqueIndex:idx_hours_restaurant_day"`
	OpenTime     string  `json:"open_time" gorm:"not null"`
	CloseTime    string  `json:"close_time" gorm:"not null"`
}
