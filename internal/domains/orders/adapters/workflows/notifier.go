package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/mail"
	orderactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/storefront-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.Notifier = (*TemporalNotifier)(nil)
	_ ports.Notifier = (*InlineNotifier)(nil)
)

// TemporalNotifier starts the confirmation workflow and returns without waiting for it.
type TemporalNotifier struct {
	client    client.Client
	taskQueue string
}

func NewTemporalNotifier(c client.Client) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: orderworkflows.OrderConfirmationTaskQueue}
}

// NotifyOrderPlaced schedules delivery. The workflow id is derived from the
// order number so a repeated dispatch for the same order is absorbed.
func (n *TemporalNotifier) NotifyOrderPlaced(ctx context.Context, confirmation ports.Confirmation) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        ConfirmationWorkflowID(confirmation.OrderNumber),
		TaskQueue: n.taskQueue,
	}
	_, err := n.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderConfirmationWorkflow, confirmation)
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}

// InlineNotifier sends from a detached goroutine when Temporal is disabled.
type InlineNotifier struct {
	sender   mail.Sender
	currency string
	timeout  time.Duration
	logger   *slog.Logger
	wait     chan struct{}
}

func NewInlineNotifier(sender mail.Sender, currency string, timeout time.Duration, logger *slog.Logger) *InlineNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineNotifier{sender: sender, currency: currency, timeout: timeout, logger: logger}
}

// NotifyOrderPlaced renders synchronously and delivers in the background.
func (n *InlineNotifier) NotifyOrderPlaced(ctx context.Context, confirmation ports.Confirmation) error {
	if n == nil || n.sender == nil {
		return errors.New("inline notifier not configured")
	}
	msg, err := mail.RenderOrderConfirmation(orderactivities.ToMailConfirmation(confirmation, n.currency))
	if err != nil {
		return err
	}
	base := context.WithoutCancel(ctx)
	done := n.wait
	go func() {
		if done != nil {
			defer func() { done <- struct{}{} }()
		}
		sendCtx, cancel := context.WithTimeout(base, n.timeout)
		defer cancel()
		if err := n.sender.Send(sendCtx, msg); err != nil {
			n.logger.LogAttrs(base, slog.LevelError, "order confirmation email failed",
				slog.String("order.number", confirmation.OrderNumber),
				slog.String("error", err.Error()))
			return
		}
		n.logger.LogAttrs(base, slog.LevelInfo, "order confirmation email sent",
			slog.String("order.number", confirmation.OrderNumber))
	}()
	return nil
}

// ConfirmationWorkflowID is the deterministic workflow id for an order.
func ConfirmationWorkflowID(orderNumber string) string {
	return fmt.Sprintf("order-confirmation-%s", orderNumber)
}
