package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

// OrderItemRequest is one cart line submitted at checkout.
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// Address is the HTTP representation of a shipping address.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CreateOrderRequest is the checkout payload. The price fields are optional;
// when totalPrice is present all four are compared with the server calculation.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress Address            `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,oneof=payhere cod"`
	Notes           string             `json:"notes"`
	ItemsPrice      *decimal.Decimal   `json:"itemsPrice"`
	TaxPrice        *decimal.Decimal   `json:"taxPrice"`
	ShippingPrice   *decimal.Decimal   `json:"shippingPrice"`
	TotalPrice      *decimal.Decimal   `json:"totalPrice"`
}

// StatusUpdate is the admin fulfilment update payload.
type StatusUpdate struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// PaymentUpdate is the admin payment status payload.
type PaymentUpdate struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
	PaymentID     string `json:"paymentId"`
	Message       string `json:"message"`
}

// OrderItem is a priced line of an order response.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// PaymentResult mirrors the gateway or admin payment report.
type PaymentResult struct {
	ID        string    `json:"id,omitempty"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID              string         `json:"id"`
	OrderNumber     string         `json:"orderNumber"`
	UserID          string         `json:"userId"`
	Items           []OrderItem    `json:"items"`
	ShippingAddress Address        `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentStatus   string         `json:"paymentStatus"`
	OrderStatus     string         `json:"orderStatus"`
	ItemsPrice      string         `json:"itemsPrice"`
	TaxPrice        string         `json:"taxPrice"`
	ShippingPrice   string         `json:"shippingPrice"`
	TotalPrice      string         `json:"totalPrice"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty"`
	TrackingNumber  string         `json:"trackingNumber,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// ToCreateOrderInput maps a checkout payload for actor.
func ToCreateOrderInput(actor identity.Actor, req CreateOrderRequest) ports.CreateOrderInput {
	input := ports.CreateOrderInput{
		Actor:         actor,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
		ShippingAddress: domain.Address{
			FullName:   req.ShippingAddress.FullName,
			Phone:      req.ShippingAddress.Phone,
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ports.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	if req.TotalPrice != nil {
		input.ClientTotals = &domain.Totals{
			Items:    valueOrZero(req.ItemsPrice),
			Tax:      valueOrZero(req.TaxPrice),
			Shipping: valueOrZero(req.ShippingPrice),
			Total:    *req.TotalPrice,
		}
	}
	return input
}

// ToPaymentResult builds the admin-reported result, or nil when nothing was reported.
func ToPaymentResult(update PaymentUpdate) *domain.PaymentResult {
	if update.PaymentID == "" && update.Message == "" {
		return nil
	}
	return &domain.PaymentResult{ID: update.PaymentID, Status: update.PaymentStatus, Message: update.Message}
}

// FromDomainOrder renders an order for API responses.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       make([]OrderItem, 0, len(order.Items)),
		ShippingAddress: Address{
			FullName:   order.ShippingAddress.FullName,
			Phone:      order.ShippingAddress.Phone,
			Street:     order.ShippingAddress.Street,
			City:       order.ShippingAddress.City,
			State:      order.ShippingAddress.State,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		PaymentMethod:  string(order.PaymentMethod),
		PaymentStatus:  string(order.PaymentStatus),
		OrderStatus:    string(order.OrderStatus),
		ItemsPrice:     order.Totals.Items.StringFixed(2),
		TaxPrice:       order.Totals.Tax.StringFixed(2),
		ShippingPrice:  order.Totals.Shipping.StringFixed(2),
		TotalPrice:     order.Totals.Total.StringFixed(2),
		TrackingNumber: order.TrackingNumber,
		Notes:          order.Notes,
		IsPaid:         order.IsPaid,
		PaidAt:         order.PaidAt,
		IsDelivered:    order.IsDelivered,
		DeliveredAt:    order.DeliveredAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.ImageURL,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice.StringFixed(2),
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	if order.PaymentResult != nil {
		out.PaymentResult = &PaymentResult{
			ID:        order.PaymentResult.ID,
			Status:    order.PaymentResult.Status,
			Message:   order.PaymentResult.Message,
			UpdatedAt: order.PaymentResult.UpdatedAt,
		}
	}
	return out
}

// FromDomainOrders maps a slice of orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, FromDomainOrder(o))
	}
	return result
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
