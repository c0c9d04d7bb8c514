package access

import (
	"context"

	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreLookup answers role and ownership questions from the relational store.
type StoreLookup struct {
	store *store.Store
}

func NewStoreLookup(s *store.Store) *StoreLookup {
	return &StoreLookup{store: s}
}

func (l *StoreLookup) HasRole(ctx context.Context, accountID uuid.UUID, role models.Role) (bool, error) {
	var n int64
	err := l.store.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Account{}).
			Where("id = ? AND role = ?", accountID, role).
			Count(&n).Error
	})
	return n > 0, err
}

func (l *StoreLookup) OwnsRestaurant(ctx context.Context, restaurantID uint, accountID uuid.UUID) (bool, error) {
	var n int64
	err := l.store.Do(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Owner{}).
			Where("restaurant_id = ? AND account_id = ?", restaurantID, accountID).
			Count(&n).Error
	})
	return n > 0, err
}
