package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	maxTxAttempts = 3
	txBackoff     = 20 * time.Millisecond
)

// Transact runs fn in a transaction and replays it when Postgres rolled the
// transaction back as a serialization failure, deadlock victim or lock
// timeout. fn must be safe to run more than once.
func Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	for attempt := 1; ; attempt++ {
		err := db.WithContext(ctx).Transaction(fn)
		if err == nil || attempt == maxTxAttempts || !IsTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * txBackoff):
		}
	}
}

// IsTransient reports whether err is a Postgres error that a fresh attempt
// of the same transaction can clear.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsTransactionRollback(pgErr.Code) || pgErr.Code == pgerrcode.LockNotAvailable
}
