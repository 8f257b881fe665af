package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores wishlists as one row per user with the items in jsonb.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&wishlistRecord{})
	}
	return repo
}

type wishlistRecord struct {
	UserID    string       `gorm:"primaryKey;column:user_id;size:64"`
	Items     []itemRecord `gorm:"column:items;type:jsonb;serializer:json"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at"`
}

func (wishlistRecord) TableName() string { return "wishlists" }

type itemRecord struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

func (r *Repository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record wishlistRecord
	if err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update locks the user's row for the duration of fn.
func (r *Repository) Update(ctx context.Context, userID string, create bool, fn func(*domain.Wishlist) error) (*domain.Wishlist, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var result *domain.Wishlist
	err := platformpostgres.Transact(ctx, r.db, func(tx *gorm.DB) error {
		if create {
			now := time.Now().UTC()
			seed := wishlistRecord{UserID: userID, Items: []itemRecord{}, CreatedAt: now, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return err
			}
		}
		var record wishlistRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		wishlist := record.toDomain()
		if err := fn(wishlist); err != nil {
			return err
		}
		wishlist.Dedupe()
		updated := toRecord(wishlist)
		if err := tx.Model(&updated).Select("items", "updated_at").Updates(&updated).Error; err != nil {
			return err
		}
		result = wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres wishlist repository not configured")
	}
	return nil
}

func toRecord(w *domain.Wishlist) wishlistRecord {
	items := make([]itemRecord, 0, len(w.Items))
	for _, item := range w.Items {
		items = append(items, itemRecord{ProductID: item.ProductID, AddedAt: item.AddedAt})
	}
	return wishlistRecord{UserID: w.UserID, Items: items, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt}
}

func (r wishlistRecord) toDomain() *domain.Wishlist {
	items := make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.Item{ProductID: item.ProductID, AddedAt: item.AddedAt})
	}
	return &domain.Wishlist{UserID: r.UserID, Items: items, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}
