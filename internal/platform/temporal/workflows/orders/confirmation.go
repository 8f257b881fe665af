package orders

import (
	"go.temporal.io/sdk/workflow"

	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/temporal/sequences"
)

const (
	// OrderConfirmationTaskQueue is polled by cmd/worker.
	OrderConfirmationTaskQueue = "ORDER_CONFIRMATION_TASK_QUEUE"
	// OrderConfirmationWorkflowName is the registered workflow type.
	OrderConfirmationWorkflowName = "orders.workflows.OrderConfirmation"
)

// OrderConfirmationWorkflow sends the confirmation for a freshly placed order.
func OrderConfirmationWorkflow(ctx workflow.Context, input orderports.Confirmation) error {
	return sequences.RunOrderConfirmationSequence(ctx, input)
}
