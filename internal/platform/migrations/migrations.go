package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context in dependency order. The
// records mirror the Postgres adapters so a fresh database can be prepared
// before any adapter is constructed.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&productSizeRecord{},
		&orderRecord{},
		&orderIdempotencyRecord{},
		&reviewRecord{},
		&wishlistRecord{},
		&userRecord{},
		&addressRecord{},
		&sessionRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter; line items are jsonb.
type orderRecord struct {
	ID                 string          `gorm:"primaryKey;column:id;size:64"`
	OrderNumber        string          `gorm:"column:order_number;size:32;uniqueIndex"`
	UserID             string          `gorm:"column:user_id;size:64;index:idx_orders_user_created"`
	Items              []byte          `gorm:"column:items;type:jsonb"`
	ShipFullName       string          `gorm:"column:ship_full_name"`
	ShipPhone          string          `gorm:"column:ship_phone"`
	ShipStreet         string          `gorm:"column:ship_street"`
	ShipCity           string          `gorm:"column:ship_city"`
	ShipState          string          `gorm:"column:ship_state"`
	ShipPostalCode     string          `gorm:"column:ship_postal_code"`
	ShipCountry        string          `gorm:"column:ship_country"`
	PaymentMethod      string          `gorm:"column:payment_method;type:varchar(16)"`
	PaymentStatus      string          `gorm:"column:payment_status;type:varchar(16);index"`
	OrderStatus        string          `gorm:"column:order_status;type:varchar(16);index"`
	ItemsPrice         decimal.Decimal `gorm:"column:items_price;type:numeric(12,2)"`
	TaxPrice           decimal.Decimal `gorm:"column:tax_price;type:numeric(12,2)"`
	ShippingPrice      decimal.Decimal `gorm:"column:shipping_price;type:numeric(12,2)"`
	TotalPrice         decimal.Decimal `gorm:"column:total_price;type:numeric(12,2)"`
	PaymentResultID    *string         `gorm:"column:payment_result_id"`
	PaymentResultState string          `gorm:"column:payment_result_status"`
	PaymentResultMsg   string          `gorm:"column:payment_result_message"`
	PaymentResultAt    *time.Time      `gorm:"column:payment_result_at"`
	TrackingNumber     string          `gorm:"column:tracking_number"`
	Notes              string          `gorm:"column:notes"`
	IsPaid             bool            `gorm:"column:is_paid"`
	PaidAt             *time.Time      `gorm:"column:paid_at"`
	IsDelivered        bool            `gorm:"column:is_delivered"`
	DeliveredAt        *time.Time      `gorm:"column:delivered_at"`
	StockReleased      bool            `gorm:"column:stock_released"`
	Version            int             `gorm:"column:version"`
	CreatedAt          time.Time       `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderIdempotencyRecord struct {
	UserID      string    `gorm:"primaryKey;column:user_id;size:64"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }

// Review schema mirrors the reviews Postgres adapter.
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

// Wishlist schema mirrors the wishlist Postgres adapter.
type wishlistRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:64"`
	Items     []byte    `gorm:"column:items;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (wishlistRecord) TableName() string { return "wishlists" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID             string          `gorm:"primaryKey;column:id;size:64"`
	Name           string          `gorm:"column:name;size:50"`
	Email          string          `gorm:"column:email;uniqueIndex"`
	PasswordHash   string          `gorm:"column:password_hash"`
	Phone          string          `gorm:"column:phone"`
	Role           string          `gorm:"column:role;type:varchar(16)"`
	IsActive       bool            `gorm:"column:is_active"`
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

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:128"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
