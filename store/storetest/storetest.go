// Package storetest opens an isolated, migrated database per test.
package storetest

import (
	"path/filepath"
	"testing"
	"time"

	"food-marketplace-api/config"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"gorm.io/gorm"
)

// Open returns a store over a fresh SQLite file in t.TempDir(). The file is
// shared by every pooled connection, so concurrent tests see one database.
func Open(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	cfg := &config.Config{
		DBPath:          filepath.Join(t.TempDir(), "test.db"),
		DBMaxOpenConns:  8,
		DBBusyTimeoutMS: 10000,
	}
	db, err := config.OpenDB(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	s := store.New(db, store.Options{
		MaxInFlight: 8,
		PoolTimeout: 10 * time.Second,
		OpTimeout:   15 * time.Second,
	})
	return s, db
}

// Account inserts an account with the given role.
func Account(t *testing.T, db *gorm.DB, name string, role models.Role) models.Account {
	t.Helper()
	a := models.Account{Name: name, PasswordHash: "x", Role: role}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return a
}

// Restaurant inserts a restaurant with one food at the given price.
func Restaurant(t *testing.T, db *gorm.DB, name string, price int64, discountPrice *int64) (models.Restaurant, models.Food) {
	t.Helper()
	r := models.Restaurant{Name: name, City: "tehran"}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("create restaurant %s: %v", name, err)
	}
	f := models.Food{RestaurantID: r.ID, Name: name + " special", Price: price, DiscountPrice: discountPrice, Available: true}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("create food: %v", err)
	}
	return r, f
}
