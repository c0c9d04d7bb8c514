package config

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBMaxOpenConns != 8 || cfg.DBPoolTimeout != 3*time.Second || cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_OP_TIMEOUT", "250ms")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SAMPLE_DATA", "true")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.DBOpTimeout != 250*time.Millisecond || !cfg.SampleData {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestDSNCarriesPragmas(t *testing.T) {
	cfg := &Config{DBPath: "x.db", DBBusyTimeoutMS: 1234}
	dsn := cfg.DSN()
	for _, want := range []string{"x.db?", "busy_timeout(1234)", "journal_mode(WAL)", "foreign_keys(1)"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestMigrateCreatesOneCartIndex(t *testing.T) {
	db, err := OpenDB(&Config{DBPath: t.TempDir() + "/m.db", DBMaxOpenConns: 2, DBBusyTimeoutMS: 1000})
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if !db.Migrator().HasIndex("orders", "idx_orders_one_cart") {
		t.Fatal("idx_orders_one_cart missing")
	}
	// migrating again is a no-op
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	cfg := &Config{
		DBPath:          t.TempDir() + "/s.db",
		DBMaxOpenConns:  2,
		DBBusyTimeoutMS: 1000,
		AdminEmail:      "admin@example.com",
		AdminPassword:   "secret123",
	}
	db, err := OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	for i := 0; i < 2; i++ {
		if err := SeedAdmin(db, cfg); err != nil {
			t.Fatalf("SeedAdmin: %v", err)
		}
	}
	var n int64
	db.Table("accounts").Where("role = ?", "admin").Count(&n)
	if n != 1 {
		t.Fatalf("admins = %d, want 1", n)
	}
}
