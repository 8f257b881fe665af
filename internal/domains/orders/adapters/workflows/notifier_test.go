package workflows

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	"github.com/Apurer/storefront-api/internal/platform/mail"
)

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func TestInlineNotifier_SendsInBackground(t *testing.T) {
	sender := &captureSender{}
	n := NewInlineNotifier(sender, "LKR", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.wait = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.NotifyOrderPlaced(ctx, ports.Confirmation{OrderNumber: "ORD1", Email: "ama@example.com", Total: "107.20"}))
	cancel()
	<-n.wait

	require.Len(t, sender.sent, 1)
	require.Equal(t, "Order Confirmation - ORD1", sender.sent[0].Subject)
}

func TestInlineNotifier_FailureIsSwallowed(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	n := NewInlineNotifier(sender, "LKR", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.wait = make(chan struct{}, 1)

	require.NoError(t, n.NotifyOrderPlaced(context.Background(), ports.Confirmation{OrderNumber: "ORD2", Email: "ama@example.com"}))
	<-n.wait
}

func TestConfirmationWorkflowID(t *testing.T) {
	require.Equal(t, "order-confirmation-ORD1", ConfirmationWorkflowID("ORD1"))
}
