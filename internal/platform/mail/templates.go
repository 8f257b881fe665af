package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// OrderConfirmation is the data rendered into the confirmation email.
type OrderConfirmation struct {
	Email       string
	Name        string
	OrderNumber string
	Items       []OrderLine
	ItemsTotal  string
	Tax         string
	Shipping    string
	Total       string
	Currency    string
}

// OrderLine is one row of the confirmation table.
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Size      string
}

var orderConfirmationTmpl = template.Must(template.New("order-confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #000; color: #fff; padding: 20px; text-align: center;"><h1>Order Confirmation</h1></div>
    <p>Hi {{.Name}},</p>
    <p>Thank you for your order! We have received it and will let you know when it ships.</p>
    <h2>Order #{{.OrderNumber}}</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <thead>
        <tr style="background: #f0f0f0;"><th align="left">Product</th><th>Quantity</th><th align="right">Price</th></tr>
      </thead>
      <tbody>
      {{- range .Items}}
        <tr><td>{{.Name}}{{if .Size}} ({{.Size}}){{end}}</td><td align="center">{{.Quantity}}</td><td align="right">{{$.Currency}} {{.UnitPrice}}</td></tr>
      {{- end}}
      </tbody>
    </table>
    <p style="text-align: right;">Items: {{.Currency}} {{.ItemsTotal}}<br>Tax: {{.Currency}} {{.Tax}}<br>Shipping: {{.Currency}} {{.Shipping}}</p>
    <p style="text-align: right; font-size: 18px; font-weight: bold;">Total: {{.Currency}} {{.Total}}</p>
  </div>
</body>
</html>
`))

// RenderOrderConfirmation builds the confirmation message for data.
func RenderOrderConfirmation(data OrderConfirmation) (Message, error) {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render order confirmation: %w", err)
	}
	return Message{
		To:      data.Email,
		Subject: fmt.Sprintf("Order Confirmation - %s", data.OrderNumber),
		HTML:    buf.String(),
	}, nil
}

// PasswordReset is the data rendered into the reset email.
type PasswordReset struct {
	Email    string
	Name     string
	ResetURL string
	// ValidFor is shown to the reader, e.g. "1 hour".
	ValidFor string
}

var passwordResetTmpl = template.Must(template.New("password-reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #000; color: #fff; padding: 20px; text-align: center;"><h1>Password Reset Request</h1></div>
    <p>Hi {{.Name}},</p>
    <p>You recently requested to reset your password. Click the button below to reset it:</p>
    <p style="text-align: center;"><a href="{{.ResetURL}}" style="display: inline-block; padding: 12px 30px; background: #000; color: #fff; text-decoration: none;">Reset Password</a></p>
    <p>If you didn't request this, please ignore this email.</p>
    <p>This link will expire in {{.ValidFor}}.</p>
  </div>
</body>
</html>
`))

func RenderPasswordReset(data PasswordReset) (Message, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render password reset: %w", err)
	}
	return Message{To: data.Email, Subject: "Password Reset Request", HTML: buf.String()}, nil
}
