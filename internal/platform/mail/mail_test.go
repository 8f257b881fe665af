package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation_EscapesAndListsItems(t *testing.T) {
	msg, err := RenderOrderConfirmation(OrderConfirmation{
		Email:       "ama@example.com",
		Name:        "<script>Ama</script>",
		OrderNumber: "ORD1",
		Items:       []OrderLine{{Name: "Linen shirt", Quantity: 2, UnitPrice: "30.00", Size: "M"}},
		Total:       "107.20",
		Currency:    "LKR",
	})
	require.NoError(t, err)
	assert.Equal(t, "ama@example.com", msg.To)
	assert.Equal(t, "Order Confirmation - ORD1", msg.Subject)
	assert.Contains(t, msg.HTML, "Linen shirt (M)")
	assert.Contains(t, msg.HTML, "Total: LKR 107.20")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRenderPasswordReset_LinksTokenAndEscapesName(t *testing.T) {
	msg, err := RenderPasswordReset(PasswordReset{
		Email:    "ama@example.com",
		Name:     "<b>Ama</b>",
		ResetURL: "https://shop.example.com/reset-password?token=abc123",
		ValidFor: "1 hour",
	})
	require.NoError(t, err)
	assert.Equal(t, "ama@example.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://shop.example.com/reset-password?token=abc123"`)
	assert.Contains(t, msg.HTML, "expire in 1 hour")
	assert.NotContains(t, msg.HTML, "<b>Ama</b>")
}

func TestLogSender_RequiresRecipient(t *testing.T) {
	require.ErrorIs(t, LogSender{}.Send(context.Background(), Message{}), ErrNoRecipient)
	require.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@b.c"}))
}

func TestNewSMTPSender_Defaults(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
	assert.Contains(t, string(s.compose(Message{To: "a@b.c", Subject: "Hi", HTML: "<p>x</p>"})), "Content-Type: text/html")
}
