package ports

import (
	"context"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	paymentsdomain "github.com/Apurer/storefront-api/internal/domains/payments/domain"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

// ItemRequest is one requested cart line. Price and name come from the catalog.
type ItemRequest struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

// CreateOrderInput is the checkout submission. ClientTotals, when present, must
// agree with the server calculation.
type CreateOrderInput struct {
	Actor           identity.Actor
	Items           []ItemRequest
	ShippingAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	Notes           string
	ClientTotals    *domain.Totals
	// IdempotencyKey, when set, makes resubmissions return the first order.
	IdempotencyKey string
}

// Service exposes order use cases.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string, actor identity.Actor) (*domain.Order, error)
	ListUserOrders(ctx context.Context, actor identity.Actor) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, result *domain.PaymentResult) (*domain.Order, error)
	ApplyGatewayNotification(ctx context.Context, notification paymentsdomain.Notification) (*domain.Order, error)
	CreatePaymentRequest(ctx context.Context, orderID string, actor identity.Actor, customer paymentsdomain.Customer) (paymentsdomain.CheckoutForm, error)
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
}
