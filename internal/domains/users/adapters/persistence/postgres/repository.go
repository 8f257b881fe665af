package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores accounts in the users table and their address books in
// user_addresses. Emails are kept normalized and carry a unique index; the DB
// must be opened with TranslateError so a clash surfaces as
// domain.ErrEmailTaken.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	if db != nil {
		_ = db.AutoMigrate(&userRecord{}, &addressRecord{})
	}
	return &Repository{db: db}
}

type userRecord struct {
	ID           string `gorm:"primaryKey;column:id;size:64"`
	Name         string `gorm:"column:name;size:50"`
	Email        string `gorm:"column:email;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash"`
	Phone        string `gorm:"column:phone"`
	Role         string `gorm:"column:role;type:varchar(16)"`
	IsActive     bool   `gorm:"column:is_active"`
	// ResetTokenHash is empty when no reset is outstanding.
	ResetTokenHash string          `gorm:"column:reset_token_hash;size:64;index"`
	ResetExpiresAt *time.Time      `gorm:"column:reset_expires_at"`
	Addresses      []addressRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

type addressRecord struct {
	ID           string `gorm:"primaryKey;column:id;size:64"`
	UserID       string `gorm:"column:user_id;size:64;index"`
	Position     int    `gorm:"column:position"`
	FullName     string `gorm:"column:full_name"`
	Phone        string `gorm:"column:phone"`
	AddressLine1 string `gorm:"column:address_line1"`
	AddressLine2 string `gorm:"column:address_line2"`
	City         string `gorm:"column:city"`
	State        string `gorm:"column:state"`
	ZipCode      string `gorm:"column:zip_code"`
	Country      string `gorm:"column:country"`
	IsDefault    bool   `gorm:"column:is_default"`
}

func (addressRecord) TableName() string { return "user_addresses" }

// Save inserts unknown ids and rewrites the mutable columns of known ones,
// replacing the address rows. Timestamps are stamped here rather than by the
// service.
func (r *Repository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := user.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := newUserRecord(clone)
	rec.UpdatedAt = now

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing userRecord
		lookup := tx.Select("id", "created_at").Where("id = ?", rec.ID).Take(&existing)
		switch {
		case errors.Is(lookup.Error, gorm.ErrRecordNotFound):
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
				return err
			}
		case lookup.Error != nil:
			return lookup.Error
		default:
			rec.CreatedAt = existing.CreatedAt
			err := tx.Model(&userRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
				"name":             rec.Name,
				"email":            rec.Email,
				"password_hash":    rec.PasswordHash,
				"phone":            rec.Phone,
				"role":             rec.Role,
				"is_active":        rec.IsActive,
				"reset_token_hash": rec.ResetTokenHash,
				"reset_expires_at": rec.ResetExpiresAt,
				"updated_at":       rec.UpdatedAt,
			}).Error
			if err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", rec.ID).Delete(&addressRecord{}).Error; err != nil {
				return err
			}
		}
		if len(rec.Addresses) == 0 {
			return nil
		}
		return tx.Create(&rec.Addresses).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.take(ctx, "id = ?", id)
}

// GetByEmail matches case-insensitively since stored emails are normalized.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.take(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *Repository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, ports.ErrNotFound
	}
	return r.take(ctx, "reset_token_hash = ?", tokenHash)
}

func (r *Repository) take(ctx context.Context, where string, arg string) (*domain.User, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rec userRecord
	err = db.Preload("Addresses", orderAddresses).Where(where, arg).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

func (r *Repository) conn(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres user repository not configured")
	}
	return r.db.WithContext(ctx), nil
}

func orderAddresses(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func newUserRecord(u *domain.User) userRecord {
	rec := userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC(),
	}
	if u.ResetTokenHash != "" {
		expires := u.ResetExpiresAt.UTC()
		rec.ResetTokenHash = u.ResetTokenHash
		rec.ResetExpiresAt = &expires
	}
	for i, a := range u.Addresses {
		rec.Addresses = append(rec.Addresses, addressRecord{
			ID:           a.ID,
			UserID:       u.ID,
			Position:     i,
			FullName:     a.FullName,
			Phone:        a.Phone,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			State:        a.State,
			ZipCode:      a.ZipCode,
			Country:      a.Country,
			IsDefault:    a.IsDefault,
		})
	}
	return rec
}

func (r userRecord) user() *domain.User {
	u := &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone,
		Role:         identity.Role(r.Role),
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ResetTokenHash != "" && r.ResetExpiresAt != nil {
		u.ResetTokenHash = r.ResetTokenHash
		u.ResetExpiresAt = r.ResetExpiresAt.UTC()
	}
	for _, a := range r.Addresses {
		u.Addresses = append(u.Addresses, domain.Address{
			ID:           a.ID,
			FullName:     a.FullName,
			Phone:        a.Phone,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			State:        a.State,
			ZipCode:      a.ZipCode,
			Country:      a.Country,
			IsDefault:    a.IsDefault,
		})
	}
	return u
}
