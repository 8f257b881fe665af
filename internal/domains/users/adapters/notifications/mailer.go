package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/platform/mail"
)

var _ ports.ResetMailer = (*ResetMailer)(nil)

// ResetMailer renders reset links against the storefront frontend and sends
// them synchronously so the caller learns about delivery failures.
type ResetMailer struct {
	sender      mail.Sender
	frontendURL string
	now         func() time.Time
}

func NewResetMailer(sender mail.Sender, frontendURL string) *ResetMailer {
	return &ResetMailer{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/"), now: time.Now}
}

func (m *ResetMailer) SendPasswordReset(ctx context.Context, reset ports.PasswordReset) error {
	if m == nil || m.sender == nil {
		return errors.New("reset mailer not configured")
	}
	msg, err := mail.RenderPasswordReset(mail.PasswordReset{
		Email:    reset.Email,
		Name:     reset.Name,
		ResetURL: m.ResetURL(reset.Token),
		ValidFor: validFor(reset.ExpiresAt.Sub(m.now())),
	})
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, msg)
}

// ResetURL is the frontend page that collects the new password.
func (m *ResetMailer) ResetURL(token string) string {
	return m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func validFor(d time.Duration) string {
	switch {
	case d >= 90*time.Minute:
		return fmt.Sprintf("%d hours", int(d.Round(time.Hour)/time.Hour))
	case d >= 50*time.Minute:
		return "1 hour"
	case d > time.Minute:
		return fmt.Sprintf("%d minutes", int(d.Round(time.Minute)/time.Minute))
	default:
		return "1 minute"
	}
}
