package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/store"
	"food-marketplace-api/store/storetest"

	"gorm.io/gorm"
)

func TestTxRollsBackOnError(t *testing.T) {
	s, db := storetest.Open(t)
	boom := errors.New("boom")

	err := s.Tx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Account{Name: "u1", PasswordHash: "x"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Tx error = %v, want cause boom", err)
	}
	if apperr.CodeOf(err) != apperr.CodeInfra {
		t.Fatalf("code = %s, want INFRA", apperr.CodeOf(err))
	}

	var n int64
	db.Model(&models.Account{}).Count(&n)
	if n != 0 {
		t.Fatalf("accounts after rollback = %d, want 0", n)
	}
}

func TestTxKeepsDomainErrors(t *testing.T) {
	s, db := storetest.Open(t)

	err := s.Tx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Account{Name: "u1", PasswordHash: "x"}).Error; err != nil {
			return err
		}
		return apperr.Conflict("taken")
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("Tx error = %v, want Conflict", err)
	}
	var n int64
	db.Model(&models.Account{}).Count(&n)
	if n != 0 {
		t.Fatalf("accounts after rollback = %d, want 0", n)
	}
}

func TestDoTranslatesRecordNotFound(t *testing.T) {
	s, _ := storetest.Open(t)

	err := s.Do(context.Background(), func(db *gorm.DB) error {
		var r models.Restaurant
		return db.First(&r, 999).Error
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Do error = %v, want NotFound", err)
	}
}

func TestPoolExhaustionIsRetryable(t *testing.T) {
	_, db := storetest.Open(t)
	s := store.New(db, store.Options{MaxInFlight: 1, PoolTimeout: 50 * time.Millisecond, OpTimeout: 5 * time.Second})

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Do(context.Background(), func(*gorm.DB) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := s.Do(context.Background(), func(*gorm.DB) error {
		t.Error("second unit must not run while the only slot is held")
		return nil
	})
	close(release)

	if !errors.Is(err, store.ErrPoolExhausted) {
		t.Fatalf("error = %v, want ErrPoolExhausted", err)
	}
	if !apperr.IsRetryable(err) {
		t.Fatal("pool exhaustion must be retryable")
	}
	if err := <-done; err != nil {
		t.Fatalf("holder: %v", err)
	}

	// the slot is free again
	if err := s.Do(context.Background(), func(*gorm.DB) error { return nil }); err != nil {
		t.Fatalf("Do after release: %v", err)
	}
}

func TestCanceledCallerIsNotPoolExhaustion(t *testing.T) {
	_, db := storetest.Open(t)
	s := store.New(db, store.Options{MaxInFlight: 1, PoolTimeout: time.Second})

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), func(*gorm.DB) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Do(ctx, func(*gorm.DB) error { return nil })
	if errors.Is(err, store.ErrPoolExhausted) {
		t.Fatalf("canceled caller reported as pool exhaustion: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled cause", err)
	}
}

func TestTxTimeoutRollsBack(t *testing.T) {
	_, db := storetest.Open(t)
	s := store.New(db, store.Options{OpTimeout: 50 * time.Millisecond})

	err := s.Tx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Account{Name: "slow", PasswordHash: "x"}).Error; err != nil {
			return err
		}
		ctx := tx.Statement.Context
		<-ctx.Done()
		return ctx.Err()
	})
	if !apperr.IsRetryable(err) {
		t.Fatalf("timeout error = %v, want retryable", err)
	}

	var n int64
	db.Model(&models.Account{}).Count(&n)
	if n != 0 {
		t.Fatalf("accounts after timeout = %d, want 0", n)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	s, _ := storetest.Open(t)
	email := "dup@example.com"

	create := func() error {
		return s.Do(context.Background(), func(db *gorm.DB) error {
			return db.Create(&models.Account{Name: "dup", Email: &email, PasswordHash: "x"}).Error
		})
	}
	if err := create(); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := create()
	if err == nil {
		t.Fatal("second create succeeded")
	}
	if !store.IsUniqueViolation(err) {
		t.Fatalf("IsUniqueViolation(%v) = false", err)
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	s, _ := storetest.Open(t)

	err := s.Do(context.Background(), func(db *gorm.DB) error {
		return db.Create(&models.Food{RestaurantID: 404, Name: "ghost", Price: 1}).Error
	})
	if err == nil {
		t.Fatal("insert with missing restaurant succeeded")
	}
	if !store.IsForeignKeyViolation(err) {
		t.Fatalf("IsForeignKeyViolation(%v) = false", err)
	}
}
