package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Line items live in a
// jsonb column so a whole order is written in one statement.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

type lineItemRecord struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

type orderRecord struct {
	ID                 string           `gorm:"primaryKey;column:id;size:64"`
	OrderNumber        string           `gorm:"column:order_number;size:32;uniqueIndex"`
	UserID             string           `gorm:"column:user_id;size:64;index:idx_orders_user_created"`
	Items              []lineItemRecord `gorm:"column:items;type:jsonb;serializer:json"`
	ShipFullName       string           `gorm:"column:ship_full_name"`
	ShipPhone          string           `gorm:"column:ship_phone"`
	ShipStreet         string           `gorm:"column:ship_street"`
	ShipCity           string           `gorm:"column:ship_city"`
	ShipState          string           `gorm:"column:ship_state"`
	ShipPostalCode     string           `gorm:"column:ship_postal_code"`
	ShipCountry        string           `gorm:"column:ship_country"`
	PaymentMethod      string           `gorm:"column:payment_method;type:varchar(16)"`
	PaymentStatus      string           `gorm:"column:payment_status;type:varchar(16);index"`
	OrderStatus        string           `gorm:"column:order_status;type:varchar(16);index"`
	ItemsPrice         decimal.Decimal  `gorm:"column:items_price;type:numeric(12,2)"`
	TaxPrice           decimal.Decimal  `gorm:"column:tax_price;type:numeric(12,2)"`
	ShippingPrice      decimal.Decimal  `gorm:"column:shipping_price;type:numeric(12,2)"`
	TotalPrice         decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2)"`
	PaymentResultID    *string          `gorm:"column:payment_result_id"`
	PaymentResultState string           `gorm:"column:payment_result_status"`
	PaymentResultMsg   string           `gorm:"column:payment_result_message"`
	PaymentResultAt    *time.Time       `gorm:"column:payment_result_at"`
	TrackingNumber     string           `gorm:"column:tracking_number"`
	Notes              string           `gorm:"column:notes"`
	IsPaid             bool             `gorm:"column:is_paid"`
	PaidAt             *time.Time       `gorm:"column:paid_at"`
	IsDelivered        bool             `gorm:"column:is_delivered"`
	DeliveredAt        *time.Time       `gorm:"column:delivered_at"`
	StockReleased      bool             `gorm:"column:stock_released"`
	Version            int              `gorm:"column:version"`
	CreatedAt          time.Time        `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt          time.Time        `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts a new order or applies a version-checked update.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	db := r.db.WithContext(ctx)
	if order.Version == 0 {
		record.Version = 1
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return r.GetByID(ctx, record.ID)
	}
	expected := record.Version
	record.Version = expected + 1
	res := db.Model(&orderRecord{}).
		Where("id = ? AND version = ?", record.ID, expected).
		Select("*").Omit("id", "order_number", "user_id", "created_at").
		Updates(&record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&orderRecord{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrStaleVersion
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.first(ctx, "order_number = ?", number)
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// List returns every order, newest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx))
}

// HasPaidOrderWithProduct uses jsonb containment on the items column.
func (r *Repository) HasPaidOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	needle, err := json.Marshal([]map[string]string{{"product_id": productID}})
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("user_id = ? AND payment_status = ? AND items @> ?::jsonb", userID, string(domain.PaymentPaid), string(needle)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) find(query *gorm.DB) ([]*domain.Order, error) {
	var records []orderRecord
	if err := query.Order("created_at DESC, order_number DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(o *domain.Order) orderRecord {
	rec := orderRecord{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		ShipFullName:   o.ShippingAddress.FullName,
		ShipPhone:      o.ShippingAddress.Phone,
		ShipStreet:     o.ShippingAddress.Street,
		ShipCity:       o.ShippingAddress.City,
		ShipState:      o.ShippingAddress.State,
		ShipPostalCode: o.ShippingAddress.PostalCode,
		ShipCountry:    o.ShippingAddress.Country,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		OrderStatus:    string(o.OrderStatus),
		ItemsPrice:     o.Totals.Items,
		TaxPrice:       o.Totals.Tax,
		ShippingPrice:  o.Totals.Shipping,
		TotalPrice:     o.Totals.Total,
		TrackingNumber: o.TrackingNumber,
		Notes:          o.Notes,
		IsPaid:         o.IsPaid,
		PaidAt:         o.PaidAt,
		IsDelivered:    o.IsDelivered,
		DeliveredAt:    o.DeliveredAt,
		StockReleased:  o.StockReleased,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, lineItemRecord{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	if pr := o.PaymentResult; pr != nil {
		id := pr.ID
		at := pr.UpdatedAt
		rec.PaymentResultID = &id
		rec.PaymentResultState = pr.Status
		rec.PaymentResultMsg = pr.Message
		rec.PaymentResultAt = &at
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	o := &domain.Order{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		UserID:      r.UserID,
		ShippingAddress: domain.Address{
			FullName:   r.ShipFullName,
			Phone:      r.ShipPhone,
			Street:     r.ShipStreet,
			City:       r.ShipCity,
			State:      r.ShipState,
			PostalCode: r.ShipPostalCode,
			Country:    r.ShipCountry,
		},
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		OrderStatus:   domain.OrderStatus(r.OrderStatus),
		Totals: domain.Totals{
			Items:    r.ItemsPrice,
			Tax:      r.TaxPrice,
			Shipping: r.ShippingPrice,
			Total:    r.TotalPrice,
		},
		TrackingNumber: r.TrackingNumber,
		Notes:          r.Notes,
		IsPaid:         r.IsPaid,
		PaidAt:         r.PaidAt,
		IsDelivered:    r.IsDelivered,
		DeliveredAt:    r.DeliveredAt,
		StockReleased:  r.StockReleased,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, item := range r.Items {
		o.Items = append(o.Items, domain.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	if r.PaymentResultID != nil {
		pr := &domain.PaymentResult{ID: *r.PaymentResultID, Status: r.PaymentResultState, Message: r.PaymentResultMsg}
		if r.PaymentResultAt != nil {
			pr.UpdatedAt = *r.PaymentResultAt
		}
		o.PaymentResult = pr
	}
	return o
}
