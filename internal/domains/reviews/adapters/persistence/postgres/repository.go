package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists reviews in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&reviewRecord{})
	}
	return repo
}

type reviewRecord struct {
	ID               string         `gorm:"primaryKey;column:id;size:64"`
	ProductID        string         `gorm:"column:product_id;size:64;uniqueIndex:idx_reviews_product_user;index:idx_reviews_product_created,priority:1"`
	UserID           string         `gorm:"column:user_id;size:64;uniqueIndex:idx_reviews_product_user"`
	UserName         string         `gorm:"column:user_name"`
	Rating           int            `gorm:"column:rating"`
	Title            string         `gorm:"column:title;size:100"`
	Comment          string         `gorm:"column:comment;size:1000"`
	VerifiedPurchase bool           `gorm:"column:verified_purchase"`
	HelpfulCount     int            `gorm:"column:helpful_count"`
	HelpfulBy        pq.StringArray `gorm:"column:helpful_by;type:text[]"`
	IsApproved       bool           `gorm:"column:is_approved"`
	CreatedAt        time.Time      `gorm:"column:created_at;index:idx_reviews_product_created,priority:2"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (reviewRecord) TableName() string { return "reviews" }

// Create inserts the review; the unique (product_id, user_id) index turns a
// second review by the same user into domain.ErrAlreadyReviewed.
func (r *Repository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errors.New("review is nil")
	}
	record := toRecord(review)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrAlreadyReviewed
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record reviewRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID string, approvedOnly bool) ([]*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}
	var records []reviewRecord
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Review, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

// AddHelpfulVote appends the voter in a single guarded UPDATE so concurrent
// votes from one user count once.
func (r *Repository) AddHelpfulVote(ctx context.Context, id, userID string) (*domain.Review, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&reviewRecord{}).
		Where("id = ? AND NOT (? = ANY(helpful_by))", id, userID).
		Updates(map[string]any{
			"helpful_by":    gorm.Expr("array_append(helpful_by, ?)", userID),
			"helpful_count": gorm.Expr("helpful_count + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrAlreadyHelpful
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&reviewRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Stats aggregates approved reviews in SQL.
func (r *Repository) Stats(ctx context.Context, productID string) (domain.Stats, error) {
	if err := r.ensureDB(); err != nil {
		return domain.Stats{}, err
	}
	var row struct {
		Average float64
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&reviewRecord{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}
	if row.Count == 0 {
		return domain.Stats{}, nil
	}
	return domain.Stats{Average: domain.RoundRating(row.Average), Count: row.Count}, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres review repository not configured")
	}
	return nil
}

func toRecord(review *domain.Review) reviewRecord {
	helpful := pq.StringArray(append([]string{}, review.HelpfulBy...))
	return reviewRecord{
		ID:               review.ID,
		ProductID:        review.ProductID,
		UserID:           review.UserID,
		UserName:         review.UserName,
		Rating:           review.Rating,
		Title:            review.Title,
		Comment:          review.Comment,
		VerifiedPurchase: review.VerifiedPurchase,
		HelpfulCount:     review.HelpfulCount,
		HelpfulBy:        helpful,
		IsApproved:       review.IsApproved,
		CreatedAt:        review.CreatedAt,
		UpdatedAt:        review.UpdatedAt,
	}
}

func (r reviewRecord) toDomain() *domain.Review {
	return &domain.Review{
		ID:               r.ID,
		ProductID:        r.ProductID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		Rating:           r.Rating,
		Title:            r.Title,
		Comment:          r.Comment,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		HelpfulBy:        append([]string(nil), r.HelpfulBy...),
		IsApproved:       r.IsApproved,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
