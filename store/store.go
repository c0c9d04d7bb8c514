// Package store is the transactional boundary every engine reads and mutates through.
//
// The store holds no state of its own beyond the database handle and an in-flight
// limiter; all coordination between concurrent requests happens in the database.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-marketplace-api/apperr"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// ErrPoolExhausted is the cause attached when no slot frees up within the pool timeout.
var ErrPoolExhausted = errors.New("store: connection pool exhausted")

// SQLite primary and extended result codes used for classification.
const (
	sqliteBusy             = 5
	sqliteLocked           = 6
	sqliteConstraintPK     = 1555
	sqliteConstraintUnique = 2067
	sqliteConstraintFK     = 787
)

type Options struct {
	MaxInFlight int64         // simultaneous store operations
	PoolTimeout time.Duration // wait for a free slot
	OpTimeout   time.Duration // upper bound on one unit of work
}

type Store struct {
	db          *gorm.DB
	slots       *semaphore.Weighted
	poolTimeout time.Duration
	opTimeout   time.Duration
}

func New(db *gorm.DB, opts Options) *Store {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 8
	}
	if opts.PoolTimeout <= 0 {
		opts.PoolTimeout = 3 * time.Second
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 5 * time.Second
	}
	return &Store{
		db:          db,
		slots:       semaphore.NewWeighted(opts.MaxInFlight),
		poolTimeout: opts.PoolTimeout,
		opTimeout:   opts.OpTimeout,
	}
}

// Tx runs fn as a single atomic unit of work. Any error from fn, or a cancelled
// context, rolls the whole unit back.
func (s *Store) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return Translate(s.db.WithContext(ctx).Transaction(fn))
}

// Do runs fn outside an explicit transaction; use it for single statements and reads.
func (s *Store) Do(ctx context.Context, fn func(db *gorm.DB) error) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return Translate(fn(s.db.WithContext(ctx)))
}

func (s *Store) acquire(ctx context.Context) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.poolTimeout)
	defer cancel()
	if err := s.slots.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Retryable("request canceled", ctx.Err())
		}
		return nil, apperr.Retryable("store busy", ErrPoolExhausted)
	}
	return func() { s.slots.Release(1) }, nil
}

// Translate classifies a raw store error into the apperr taxonomy. Domain errors
// returned from inside a transaction pass through untouched.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var domain *apperr.Error
	if errors.As(err, &domain) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Retryable("store timeout", err)
	case IsBusy(err):
		return apperr.Retryable("store busy", err)
	}
	return apperr.Infra("store failure", err)
}

type sqliteCoder interface {
	Code() int
}

// IsBusy reports SQLITE_BUSY / SQLITE_LOCKED, the serialization failures of SQLite.
func IsBusy(err error) bool {
	var c sqliteCoder
	if errors.As(err, &c) {
		code := c.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// IsUniqueViolation reports a unique or primary key constraint failure.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var c sqliteCoder
	if errors.As(err, &c) {
		return c.Code() == sqliteConstraintUnique || c.Code() == sqliteConstraintPK
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports an insert or update that referenced a missing row.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var c sqliteCoder
	if errors.As(err, &c) {
		return c.Code() == sqliteConstraintFK
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
