// Package cart owns the per-account open order and its line items.
package cart

import (
	"context"
	"errors"
	"time"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewItem is one cart mutation. Quantity is a delta and may be negative.
type NewItem struct {
	OrderID       uint   `json:"order_id" binding:"required"`
	FoodID        uint   `json:"food_id" binding:"required"`
	RestaurantID  uint   `json:"restaurant_id"`
	Quantity      int    `json:"quantity" binding:"required"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price"`
}

// OrderSnapshot is an order with its items and computed totals.
type OrderSnapshot struct {
	OrderID              uint               `json:"order_id"`
	AccountID            uuid.UUID          `json:"account_id"`
	Status               models.OrderStatus `json:"status"`
	Items                []models.Item      `json:"items"`
	TotalPrice           int64              `json:"total_price"`
	TotalDiscountedPrice *int64             `json:"total_discounted_price"`
	CreatedAt            time.Time          `json:"created_at"`
}

type Engine struct {
	store *store.Store
}

func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

const (
	// Guarded by the SELECT: only the caller's open cart accepts items.
	upsertItem = `INSERT INTO items (order_id, food_id, account_id, restaurant_id, quantity, name, image, price, discount_price)
SELECT id, ?, account_id, ?, ?, ?, ?, ?, ? FROM orders
WHERE id = ? AND account_id = ? AND status = 'cart'
ON CONFLICT (order_id, food_id) DO UPDATE SET quantity = items.quantity + excluded.quantity`

	deleteEmptyItem = `DELETE FROM items WHERE order_id = ? AND food_id = ? AND quantity <= 0`

	totalsQuery = `SELECT
  COALESCE(SUM(price * quantity), 0) AS total_price,
  SUM(discount_price * quantity) AS total_discounted_price
FROM items
WHERE order_id = ?`
)

// GetOrCreate returns the id of the account's open cart, creating it if needed.
//
// The insert is conditional on the partial unique index idx_orders_one_cart, so two
// racing calls cannot both create a cart; whichever loses reads the winner's row.
// A SELECT followed by an INSERT would let both calls observe "no cart" and insert.
func (e *Engine) GetOrCreate(ctx context.Context, accountID uuid.UUID) (uint, error) {
	var id uint
	err := e.store.Tx(ctx, func(tx *gorm.DB) error {
		order := models.Order{AccountID: accountID, Status: models.StatusCart}
		err := tx.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "account_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'cart'"}}},
			DoNothing:   true,
		}).Create(&order).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("account_id = ? AND status = ?", accountID, models.StatusCart).
			Pluck("id", &id).Error
	})
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, apperr.Infra("get or create cart", errors.New("cart row missing after insert"))
	}
	return id, nil
}

// AddItem applies a quantity delta to (order, food) and drops the row if the
// result is no longer positive. Both steps commit or roll back together.
func (e *Engine) AddItem(ctx context.Context, accountID uuid.UUID, item NewItem) error {
	if item.Quantity == 0 {
		return apperr.InvalidInput("quantity must not be zero")
	}
	return e.store.Tx(ctx, func(tx *gorm.DB) error {
		res := tx.Exec(upsertItem,
			item.FoodID, item.RestaurantID, item.Quantity, item.Name, item.Image, item.Price, item.DiscountPrice,
			item.OrderID, accountID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart not found")
		}
		return tx.Exec(deleteEmptyItem, item.OrderID, item.FoodID).Error
	})
}

// Get returns the order with its items and totals. Only the owning account can
// read it; any other caller gets NotFound, whether or not the order exists.
func (e *Engine) Get(ctx context.Context, accountID uuid.UUID, orderID uint) (OrderSnapshot, error) {
	var snap OrderSnapshot
	err := e.store.Tx(ctx, func(tx *gorm.DB) error {
		var err error
		snap, err = Snapshot(tx, accountID, orderID)
		return err
	})
	if err != nil {
		return OrderSnapshot{}, err
	}
	return snap, nil
}

// Snapshot reads an owned order inside an existing transaction.
func Snapshot(tx *gorm.DB, accountID uuid.UUID, orderID uint) (OrderSnapshot, error) {
	var order models.Order
	err := tx.Where("id = ? AND account_id = ?", orderID, accountID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OrderSnapshot{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return OrderSnapshot{}, err
	}

	items := []models.Item{}
	if err := tx.Where("order_id = ?", orderID).Order("id").Find(&items).Error; err != nil {
		return OrderSnapshot{}, err
	}

	var totals struct {
		TotalPrice           int64
		TotalDiscountedPrice *int64
	}
	if err := tx.Raw(totalsQuery, orderID).Scan(&totals).Error; err != nil {
		return OrderSnapshot{}, err
	}

	return OrderSnapshot{
		OrderID:              order.ID,
		AccountID:            order.AccountID,
		Status:               order.Status,
		Items:                items,
		TotalPrice:           totals.TotalPrice,
		TotalDiscountedPrice: totals.TotalDiscountedPrice,
		CreatedAt:            order.CreatedAt,
	}, nil
}
