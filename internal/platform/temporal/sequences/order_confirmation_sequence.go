package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/orders"
)

// ConfirmationActivityOptions bounds mail delivery: five attempts with
// backoff, giving up within half an hour. Template and recipient errors are
// final.
var ConfirmationActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout:    time.Minute,
	ScheduleToCloseTimeout: 30 * time.Minute,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:        2 * time.Second,
		BackoffCoefficient:     2.0,
		MaximumInterval:        10 * time.Second,
		MaximumAttempts:        5,
		NonRetryableErrorTypes: []string{"render", "recipient"},
	},
}

// RunOrderConfirmationSequence sends the confirmation email for one order.
func RunOrderConfirmationSequence(ctx workflow.Context, input orderports.Confirmation) error {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, ConfirmationActivityOptions)
	if err := workflow.ExecuteActivity(ctx, orderactivities.SendOrderConfirmationActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("order confirmation not delivered", "orderNumber", input.OrderNumber, "error", err)
		return err
	}
	logger.Info("order confirmation delivered", "orderNumber", input.OrderNumber)
	return nil
}
