package config

import (
	"fmt"
	"log"
	"time"

	"food-marketplace-api/models"

	"github.com/caarlos0/env/v11"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE"`

	DBPath          string        `env:"DB_PATH" envDefault:"food_marketplace.db"`
	DBMaxOpenConns  int           `env:"DB_MAX_OPEN_CONNS" envDefault:"8"`
	DBPoolTimeout   time.Duration `env:"DB_POOL_TIMEOUT" envDefault:"3s"`
	DBOpTimeout     time.Duration `env:"DB_OP_TIMEOUT" envDefault:"5s"`
	DBBusyTimeoutMS int           `env:"DB_BUSY_TIMEOUT_MS" envDefault:"5000"`
	ResetDB         bool          `env:"RESET_DB"`
	SampleData      bool          `env:"SAMPLE_DATA"`

	// JWTSecret signs bearer tokens; the fallback is only fit for local runs
	JWTSecret string        `env:"JWT_SECRET" envDefault:"food_marketplace_super_secret_2024"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	UploadDir   string   `env:"UPLOAD_DIR" envDefault:"./uploads"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN builds the SQLite connection string with the pragmas every connection needs.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)",
		c.DBPath, c.DBBusyTimeoutMS)
}

// OpenDB connects, sizes the pool and migrates. The caller owns the returned handle.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.ResetDB {
		if err := Reset(db); err != nil {
			return nil, err
		}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

var allModels = []any{
	&models.Account{},
	&models.Restaurant{},
	&models.Food{},
	&models.Owner{},
	&models.OpenHours{},
	&models.Comment{},
	&models.CommentVote{},
	&models.Order{},
	&models.Item{},
	&models.Payment{},
	&models.OrderStatusHistory{},
}

// Migrate creates every table plus the partial index that keeps one open cart per account.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_cart ON orders (account_id) WHERE status = 'cart'",
	).Error; err != nil {
		return fmt.Errorf("create cart index: %w", err)
	}
	return nil
}

// Reset drops every table; used for RESET_DB runs and never implicitly.
func Reset(db *gorm.DB) error {
	for i := len(allModels) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(allModels[i]); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	log.Println("⚠️  Database reset")
	return nil
}
