package ports

import (
	"context"

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	paymentsdomain "github.com/Apurer/storefront-api/internal/domains/payments/domain"
)

// Inventory is the slice of the catalog the engine relies on.
type Inventory interface {
	FindProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
	DecrementStock(ctx context.Context, id, size string, quantity int) error
	Restock(ctx context.Context, id, size string, quantity int) error
}

// PaymentGateway signs checkout redirects and authenticates notifications.
type PaymentGateway interface {
	MerchantID() string
	Verify(n paymentsdomain.Notification) bool
	CheckoutForm(req paymentsdomain.CheckoutRequest) paymentsdomain.CheckoutForm
}

// Confirmation is the payload handed to the notification sink.
type Confirmation struct {
	OrderID       string
	OrderNumber   string
	Email         string
	Name          string
	Items         []ConfirmationItem
	ItemsTotal    string
	Tax           string
	Shipping      string
	Total         string
	PaymentMethod string
}

// ConfirmationItem is one rendered line of the confirmation.
type ConfirmationItem struct {
	Name      string
	Quantity  int
	UnitPrice string
	Size      string
}

// Notifier dispatches the order confirmation. Implementations return once the
// work is handed off; delivery failures never reach the caller.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, confirmation Confirmation) error
}

// ConfirmationFromOrder renders an order into a confirmation payload.
func ConfirmationFromOrder(order *domain.Order, email, name string) Confirmation {
	c := Confirmation{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Email:         email,
		Name:          name,
		ItemsTotal:    order.Totals.Items.StringFixed(2),
		Tax:           order.Totals.Tax.StringFixed(2),
		Shipping:      order.Totals.Shipping.StringFixed(2),
		Total:         order.Totals.Total.StringFixed(2),
		PaymentMethod: string(order.PaymentMethod),
	}
	for _, item := range order.Items {
		c.Items = append(c.Items, ConfirmationItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Size:      item.Size,
		})
	}
	return c
}
