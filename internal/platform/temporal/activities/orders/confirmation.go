package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/mail"
)

// SendOrderConfirmationActivityName renders and mails the order confirmation.
const SendOrderConfirmationActivityName = "orders.activities.SendOrderConfirmation"

// Activities groups the activities that deliver order notifications.
type Activities struct {
	sender   mail.Sender
	currency string
}

func NewActivities(sender mail.Sender, currency string) *Activities {
	return &Activities{sender: sender, currency: currency}
}

// SendOrderConfirmation delivers one confirmation email. A missing recipient is
// not retryable.
func (a *Activities) SendOrderConfirmation(ctx context.Context, input orderports.Confirmation) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.sender == nil {
		logger.Error("order confirmation activity not initialized", "orderNumber", input.OrderNumber)
		return errors.New("order confirmation activity not initialized")
	}
	logger.Info("SendOrderConfirmation activity started", "orderNumber", input.OrderNumber)
	msg, err := mail.RenderOrderConfirmation(ToMailConfirmation(input, a.currency))
	if err != nil {
		return temporal.NewNonRetryableApplicationError(err.Error(), "render", err)
	}
	if err := a.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrNoRecipient) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "recipient", err)
		}
		logger.Error("SendOrderConfirmation activity failed", "orderNumber", input.OrderNumber, "error", err)
		return err
	}
	logger.Info("SendOrderConfirmation activity completed", "orderNumber", input.OrderNumber)
	return nil
}

// ToMailConfirmation maps the engine payload onto the email template data.
func ToMailConfirmation(c orderports.Confirmation, currency string) mail.OrderConfirmation {
	data := mail.OrderConfirmation{
		Email:       c.Email,
		Name:        c.Name,
		OrderNumber: c.OrderNumber,
		ItemsTotal:  c.ItemsTotal,
		Tax:         c.Tax,
		Shipping:    c.Shipping,
		Total:       c.Total,
		Currency:    currency,
	}
	for _, item := range c.Items {
		data.Items = append(data.Items, mail.OrderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
		})
	}
	return data
}
