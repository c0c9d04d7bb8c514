package config

import (
	"log"

	"food-marketplace-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL / ADMIN_PASSWORD
func SeedAdmin(db *gorm.DB, cfg *Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("⚠️ skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	if err := db.Model(&models.Account{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("ℹ️ admin already exists:", cfg.AdminEmail)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	email := cfg.AdminEmail
	admin := models.Account{
		Name:         "Admin",
		Email:        &email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	return db.Create(&admin).Error
}

// SeedSampleData inserts a few restaurants with menus when the catalog is empty
func SeedSampleData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	discounted := int64(90000)
	restaurants := []models.Restaurant{
		{
			Name: "Kababi Shahrzad", Rating: 4.5, City: "tehran", Address: "Valiasr St",
			Tags: []string{"persian", "kabab"}, Latitude: 35.7, Longitude: 51.4,
			Foods: []models.Food{
				{Name: "Koobideh", Tag: "kabab", Price: 120000, Available: true},
				{Name: "Joojeh", Tag: "kabab", Price: 100000, DiscountPrice: &discounted, Available: true},
			},
			Hours: []models.OpenHours{
				{DayOfWeek: models.Saturday, OpenTime: "11:00", CloseTime: "23:00"},
				{DayOfWeek: models.Friday, OpenTime: "12:00", CloseTime: "22:00"},
			},
		},
		{
			Name: "Pizza Station", Rating: 4.1, City: "shiraz", Address: "Zand Blvd",
			Tags: []string{"fast_food", "pizza"}, Latitude: 29.6, Longitude: 52.5,
			Foods: []models.Food{
				{Name: "Margherita", Tag: "pizza", Price: 180000, Available: true},
				{Name: "Pepperoni", Tag: "pizza", Price: 220000, Available: true},
			},
		},
	}
	if err := db.Create(&restaurants).Error; err != nil {
		return err
	}
	log.Printf("🌱 Seeded %d sample restaurants", len(restaurants))
	return nil
}
