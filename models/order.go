package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle of a marketplace order
type OrderStatus string

const (
	StatusCart      OrderStatus = "cart"
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

// Terminal reports whether no further transitions are possible
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Order with status cart is unique per account (partial index, see config.Migrate)
type Order struct {
	ID                   uint                 `json:"id" gorm:"primaryKey"`
	AccountID            uuid.UUID            `json:"account_id" gorm:"type:text;not null;index"`
	Status               OrderStatus          `json:"status" gorm:"not null;default:'cart';index"`
	TotalPrice           int64                `json:"total_price"`
	TotalDiscountedPrice *int64               `json:"total_discounted_price"`
	Items                []Item               `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory        []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Item rows never hold a quantity <= 0; reaching zero deletes the row
type Item struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_items_order_food"`
	FoodID        uint      `json:"food_id" gorm:"not null;uniqueIndex:idx_items_order_food"`
	AccountID     uuid.UUID `json:"account_id" gorm:"type:text;not null"`
	RestaurantID  uint      `json:"restaurant_id" gorm:"not null;index"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	Name          string    `json:"name"`                  // snapshot name
	Image         string    `json:"image"`                 // snapshot image
	Price         int64     `json:"price" gorm:"not null"` // snapshot price at time of order
	DiscountPrice *int64    `json:"discount_price"`
}

// Payment is recorded at checkout; no gateway is involved
type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       uint      `json:"order_id" gorm:"not null;uniqueIndex"`
	AccountID     uuid.UUID `json:"account_id" gorm:"type:text;not null;index"`
	Cash          bool      `json:"cash"`
	PaidMoney     *int64    `json:"paid_money"`
	TransactionID *string   `json:"transaction_id"`
	CardLast4     *string   `json:"card_last4"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uuid.UUID   `json:"changed_by" gorm:"type:text"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
