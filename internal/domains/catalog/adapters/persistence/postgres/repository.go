package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&productRecord{}, &productSizeRecord{})
	}
	return repo
}

type productRecord struct {
	ID             string              `gorm:"primaryKey;column:id;size:64"`
	Name           string              `gorm:"column:name;size:200"`
	Description    string              `gorm:"column:description"`
	Price          decimal.Decimal     `gorm:"column:price;type:numeric(12,2);index"`
	OriginalPrice  decimal.Decimal     `gorm:"column:original_price;type:numeric(12,2)"`
	OnSale         bool                `gorm:"column:on_sale"`
	SalePercentage int                 `gorm:"column:sale_percentage"`
	ImageURL       string              `gorm:"column:image_url"`
	Images         pq.StringArray      `gorm:"column:images;type:text[]"`
	Category       string              `gorm:"column:category;type:varchar(32);index"`
	SubCategory    string              `gorm:"column:sub_category"`
	Stock          int                 `gorm:"column:stock"`
	Colors         pq.StringArray      `gorm:"column:colors;type:text[]"`
	Material       string              `gorm:"column:material"`
	Brand          string              `gorm:"column:brand"`
	Tags           pq.StringArray      `gorm:"column:tags;type:text[]"`
	IsActive       bool                `gorm:"column:is_active;index"`
	IsFeatured     bool                `gorm:"column:is_featured;index"`
	AverageRating  float64             `gorm:"column:average_rating"`
	NumReviews     int                 `gorm:"column:num_reviews"`
	Sizes          []productSizeRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;index"`
	UpdatedAt      time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type productSizeRecord struct {
	ProductID string `gorm:"primaryKey;column:product_id;size:64"`
	Size      string `gorm:"primaryKey;column:size;size:16"`
	Position  int    `gorm:"column:position"`
	Stock     int    `gorm:"column:stock"`
}

func (productSizeRecord) TableName() string { return "product_sizes" }

// Save upserts a product and replaces its size rows.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	err := platformpostgres.Transact(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "description", "price", "original_price", "on_sale", "sale_percentage",
					"image_url", "images", "category", "sub_category", "stock", "colors", "material",
					"brand", "tags", "is_active", "is_featured", "average_rating", "num_reviews", "updated_at",
				}),
			}).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", record.ID).Delete(&productSizeRecord{}).Error; err != nil {
			return err
		}
		if len(record.Sizes) == 0 {
			return nil
		}
		return tx.Create(&record.Sizes).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a product with its sizes.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).Preload("Sizes", orderSizes).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a product; size rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List applies the filter in SQL and returns one page plus the match count.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (ports.Page, error) {
	page := ports.Page{Page: filter.Page, Limit: filter.Limit}
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	query := r.db.WithContext(ctx).Model(&productRecord{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.OnSaleOnly {
		query = query.Where("on_sale = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where("(name ILIKE ? OR description ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return page, err
	}
	page.Total = int(total)

	query = query.Order(orderClause(filter.Sort))
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.Limit)
	}
	var records []productRecord
	if err := query.Preload("Sizes", orderSizes).Find(&records).Error; err != nil {
		return page, err
	}
	page.Products = make([]*domain.Product, 0, len(records))
	for i := range records {
		page.Products = append(page.Products, records[i].toDomain())
	}
	return page, nil
}

// DecrementStock locks the product row, checks the counters through the
// domain rules, then applies guarded updates so a concurrent writer can never
// drive a counter negative.
func (r *Repository) DecrementStock(ctx context.Context, id, size string, quantity int) error {
	return r.adjustStock(ctx, id, size, func(p *domain.Product) error {
		return p.Decrement(size, quantity)
	}, -quantity)
}

// Restock returns units to the product and the matching size row.
func (r *Repository) Restock(ctx context.Context, id, size string, quantity int) error {
	return r.adjustStock(ctx, id, size, func(p *domain.Product) error {
		return p.Restock(size, quantity)
	}, quantity)
}

func (r *Repository) adjustStock(ctx context.Context, id, size string, apply func(*domain.Product) error, delta int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return platformpostgres.Transact(ctx, r.db, func(tx *gorm.DB) error {
		var record productRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Sizes", orderSizes).
			First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		product := record.toDomain()
		if err := apply(product); err != nil {
			return err
		}
		if len(product.Sizes) > 0 {
			normalized := strings.ToUpper(strings.TrimSpace(size))
			res := tx.Model(&productSizeRecord{}).
				Where("product_id = ? AND size = ? AND stock + ? >= 0", id, normalized, delta).
				UpdateColumn("stock", gorm.Expr("stock + ?", delta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrInsufficientStock
			}
		}
		res := tx.Model(&productRecord{}).
			Where("id = ? AND stock + ? >= 0", id, delta).
			UpdateColumns(map[string]any{
				"stock":      gorm.Expr("stock + ?", delta),
				"updated_at": gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientStock
		}
		return nil
	})
}

// UpdateRating stores the recomputed review aggregate.
func (r *Repository) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if count <= 0 {
		average, count = 0, 0
	}
	res := r.db.WithContext(ctx).Model(&productRecord{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"average_rating": average, "num_reviews": count})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Related lists active products of the same category, best rated first.
func (r *Repository) Related(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	var records []productRecord
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ? AND is_active = ?", string(product.Category), product.ID, true).
		Order(orderClause(ports.SortRating)).
		Limit(limit).
		Preload("Sizes", orderSizes).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	related := make([]*domain.Product, 0, len(records))
	for i := range records {
		related = append(related, records[i].toDomain())
	}
	return related, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func orderSizes(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func orderClause(sort ports.SortOrder) string {
	switch sort {
	case ports.SortPriceLow:
		return "price ASC, created_at DESC"
	case ports.SortPriceHigh:
		return "price DESC, created_at DESC"
	case ports.SortRating:
		return "average_rating DESC, created_at DESC"
	case ports.SortNewest:
		return "created_at DESC, id ASC"
	default:
		return "is_featured DESC, created_at DESC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toRecord(p *domain.Product) productRecord {
	rec := productRecord{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		OnSale:         p.OnSale,
		SalePercentage: p.SalePercentage,
		ImageURL:       p.ImageURL,
		Images:         pq.StringArray(append([]string{}, p.Images...)),
		Category:       string(p.Category),
		SubCategory:    p.SubCategory,
		Stock:          p.Stock,
		Colors:         pq.StringArray(append([]string{}, p.Colors...)),
		Material:       p.Material,
		Brand:          p.Brand,
		Tags:           pq.StringArray(append([]string{}, p.Tags...)),
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		AverageRating:  p.AverageRating,
		NumReviews:     p.NumReviews,
		CreatedAt:      p.CreatedAt,
	}
	for i, s := range p.Sizes {
		rec.Sizes = append(rec.Sizes, productSizeRecord{ProductID: p.ID, Size: s.Size, Position: i, Stock: s.Stock})
	}
	return rec
}

func (r productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		OriginalPrice:  r.OriginalPrice,
		OnSale:         r.OnSale,
		SalePercentage: r.SalePercentage,
		ImageURL:       r.ImageURL,
		Images:         append([]string(nil), r.Images...),
		Category:       domain.Category(r.Category),
		SubCategory:    r.SubCategory,
		Stock:          r.Stock,
		Colors:         append([]string(nil), r.Colors...),
		Material:       r.Material,
		Brand:          r.Brand,
		Tags:           append([]string(nil), r.Tags...),
		IsActive:       r.IsActive,
		IsFeatured:     r.IsFeatured,
		AverageRating:  r.AverageRating,
		NumReviews:     r.NumReviews,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, s := range r.Sizes {
		p.Sizes = append(p.Sizes, domain.SizeStock{Size: s.Size, Stock: s.Stock})
	}
	return p
}
