package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists checkout keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get loads a record by user and key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, userID, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "user_id = ? AND key = ?", userID, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortIdempotencyRecord(&record), nil
}

// Save inserts the record. A duplicate key returns the stored record, with
// ErrIdempotencyConflict when it belongs to another request or order.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	dbRecord := idempotencyRecord{
		UserID:      record.UserID,
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
	}
	if err := s.db.WithContext(ctx).Create(&dbRecord).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		existing, getErr := s.Get(ctx, record.UserID, record.Key)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, err
		}
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
			return existing, ports.ErrIdempotencyConflict
		}
		return existing, nil
	}
	return toPortIdempotencyRecord(&dbRecord), nil
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRecord struct {
	UserID      string    `gorm:"primaryKey;column:user_id;size:64"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func toPortIdempotencyRecord(rec *idempotencyRecord) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         rec.Key,
		UserID:      rec.UserID,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
