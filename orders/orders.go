// Package orders moves orders past the cart state: checkout and fulfilment.
package orders

import (
	"context"
	"errors"
	"time"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"
	"food-marketplace-api/cart"
	"food-marketplace-api/models"
	"food-marketplace-api/statemachine"
	"food-marketplace-api/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentInput is recorded as-is at checkout; no gateway is called.
type PaymentInput struct {
	Cash          bool    `json:"cash"`
	PaidMoney     *int64  `json:"paid_money"`
	TransactionID *string `json:"transaction_id"`
	CardNumber    *string `json:"card_number"`
}

type Service struct {
	store  *store.Store
	access *access.Evaluator
}

func New(s *store.Store, a *access.Evaluator) *Service {
	return &Service{store: s, access: a}
}

const freezeTotals = `UPDATE orders SET
  status = ?,
  total_price = (SELECT COALESCE(SUM(price * quantity), 0) FROM items WHERE order_id = orders.id),
  total_discounted_price = (SELECT SUM(discount_price * quantity) FROM items WHERE order_id = orders.id),
  updated_at = ?
WHERE id = ? AND account_id = ? AND status = ?`

// Checkout moves the account's cart to pending, freezes its totals and records the payment.
func (s *Service) Checkout(ctx context.Context, accountID uuid.UUID, orderID uint, pay PaymentInput) (cart.OrderSnapshot, error) {
	if err := statemachine.CanTransition(models.StatusCart, models.StatusPending, statemachine.ActorCustomer); err != nil {
		return cart.OrderSnapshot{}, apperr.InvalidInput(err.Error())
	}

	var snap cart.OrderSnapshot
	err := s.store.Tx(ctx, func(tx *gorm.DB) error {
		res := tx.Exec(freezeTotals, models.StatusPending, time.Now(), orderID, accountID, models.StatusCart)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cart not found")
		}

		var n int64
		if err := tx.Model(&models.Item{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.InvalidInput("cart is empty")
		}

		payment := models.Payment{
			OrderID:       orderID,
			AccountID:     accountID,
			Cash:          pay.Cash,
			PaidMoney:     pay.PaidMoney,
			TransactionID: pay.TransactionID,
			CardLast4:     lastFour(pay.CardNumber),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: models.StatusCart,
			ToStatus:   models.StatusPending,
			ChangedBy:  accountID,
			Note:       "Checked out by customer",
		}).Error; err != nil {
			return err
		}

		var err error
		snap, err = cart.Snapshot(tx, accountID, orderID)
		return err
	})
	if err != nil {
		return cart.OrderSnapshot{}, err
	}
	return snap, nil
}

// UpdateStatus applies a restaurant-side transition. The caller must be able to
// modify every restaurant with items on the order; callers who cannot see the
// order get NotFound rather than Denied.
func (s *Service) UpdateStatus(ctx context.Context, accountID uuid.UUID, orderID uint, to models.OrderStatus, note string) (models.OrderStatus, error) {
	var (
		order       models.Order
		restaurants []uint
	)
	err := s.store.Do(ctx, func(db *gorm.DB) error {
		if err := db.First(&order, orderID).Error; err != nil {
			return err
		}
		return db.Model(&models.Item{}).Where("order_id = ?", orderID).
			Distinct().Pluck("restaurant_id", &restaurants).Error
	})
	if err != nil {
		return "", err
	}
	if len(restaurants) == 0 {
		return "", apperr.NotFound("order not found")
	}

	for _, rid := range restaurants {
		if err := s.access.Check(ctx, accountID, access.ActionModifyRestaurant, rid); err != nil {
			if errors.Is(err, apperr.ErrDenied) {
				return "", apperr.NotFound("order not found")
			}
			return "", err
		}
	}

	actor := statemachine.ActorRestaurant
	isAdmin, err := s.access.HasRole(ctx, accountID, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	if isAdmin {
		actor = statemachine.ActorAdmin
	}
	if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
		return "", apperr.InvalidInput(err.Error())
	}

	err = s.store.Tx(ctx, func(tx *gorm.DB) error {
		// compare-and-set on the status read above
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("order status changed, reload and retry")
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: order.Status,
			ToStatus:   to,
			ChangedBy:  accountID,
			Note:       note,
		}).Error
	})
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// ListForAccount returns the account's orders, newest first.
func (s *Service) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.store.Do(ctx, func(db *gorm.DB) error {
		return db.Preload("Items").Where("account_id = ?", accountID).
			Order("created_at desc").Find(&orders).Error
	})
	return orders, err
}

// ListForRestaurant returns non-cart orders holding items of restaurantID.
func (s *Service) ListForRestaurant(ctx context.Context, accountID uuid.UUID, restaurantID uint, status models.OrderStatus) ([]models.Order, error) {
	if err := s.access.Check(ctx, accountID, access.ActionModifyRestaurant, restaurantID); err != nil {
		return nil, err
	}
	orders := []models.Order{}
	err := s.store.Do(ctx, func(db *gorm.DB) error {
		q := db.Preload("Items", "restaurant_id = ?", restaurantID).
			Where("status <> ?", models.StatusCart).
			Where("id IN (?)", db.Model(&models.Item{}).Select("order_id").Where("restaurant_id = ?", restaurantID))
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q.Order("created_at desc").Find(&orders).Error
	})
	return orders, err
}

func lastFour(card *string) *string {
	if card == nil || len(*card) < 4 {
		return nil
	}
	s := (*card)[len(*card)-4:]
	return &s
}
