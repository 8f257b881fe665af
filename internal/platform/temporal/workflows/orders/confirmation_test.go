package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/mail"
	orderactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/orders"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	sent     []mail.Message
}

func (s *flakySender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp temporarily unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func confirmation() orderports.Confirmation {
	return orderports.Confirmation{
		OrderID:     "o-1",
		OrderNumber: "ORD1",
		Email:       "ama@example.com",
		Name:        "Ama",
		Items:       []orderports.ConfirmationItem{{Name: "Linen shirt", Quantity: 2, UnitPrice: "30.00"}},
		Total:       "107.20",
	}
}

func TestOrderConfirmationWorkflow_RetriesUntilDelivered(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	sender := &flakySender{failures: 2}
	acts := orderactivities.NewActivities(sender, "LKR")
	env.RegisterActivityWithOptions(acts.SendOrderConfirmation, activity.RegisterOptions{Name: orderactivities.SendOrderConfirmationActivityName})

	env.ExecuteWorkflow(OrderConfirmationWorkflow, confirmation())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Len(t, sender.sent, 1)
	require.Equal(t, "ama@example.com", sender.sent[0].To)
}

func TestOrderConfirmationWorkflow_MissingRecipientIsNotRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	acts := orderactivities.NewActivities(mail.LogSender{}, "LKR")
	env.RegisterActivityWithOptions(acts.SendOrderConfirmation, activity.RegisterOptions{Name: orderactivities.SendOrderConfirmationActivityName})

	input := confirmation()
	input.Email = ""
	env.ExecuteWorkflow(OrderConfirmationWorkflow, input)

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
