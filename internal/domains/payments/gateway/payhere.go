// Package gateway signs outbound checkout redirects and verifies inbound
// notifications for the PayHere hosted checkout.
package gateway

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/payments/domain"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"

	sandboxCheckoutURL = "https://sandbox.payhere.lk/pay/checkout"
	liveCheckoutURL    = "https://www.payhere.lk/pay/checkout"
)

// Config carries merchant credentials and redirect targets.
type Config struct {
	MerchantID     string
	MerchantSecret string
	Currency       string
	Mode           string
	Country        string
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
}

// Gateway is stateless apart from its configuration and safe for concurrent use.
type Gateway struct {
	cfg        Config
	secretHash string
}

var ErrNotConfigured = errors.New("payment gateway merchant credentials are not configured")

// New validates cfg and precomputes the digested secret.
func New(cfg Config) (*Gateway, error) {
	cfg.MerchantID = strings.TrimSpace(cfg.MerchantID)
	if cfg.MerchantID == "" || cfg.MerchantSecret == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Currency == "" {
		cfg.Currency = "LKR"
	}
	if cfg.Mode != ModeLive {
		cfg.Mode = ModeSandbox
	}
	if cfg.Country == "" {
		cfg.Country = "Sri Lanka"
	}
	return &Gateway{cfg: cfg, secretHash: upperMD5(cfg.MerchantSecret)}, nil
}

// MerchantID returns the configured merchant account.
func (g *Gateway) MerchantID() string { return g.cfg.MerchantID }

// Currency returns the settlement currency.
func (g *Gateway) Currency() string { return g.cfg.Currency }

// PublicConfig is what the storefront may expose to browsers.
type PublicConfig struct {
	MerchantID  string `json:"merchantId"`
	Mode        string `json:"mode"`
	CheckoutURL string `json:"checkoutUrl"`
}

func (g *Gateway) PublicConfig() PublicConfig {
	return PublicConfig{MerchantID: g.cfg.MerchantID, Mode: g.cfg.Mode, CheckoutURL: g.checkoutURL()}
}

// FormatAmount renders amount with exactly two decimals, rounding half away from zero.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Sign computes UPPER(MD5(merchantID + orderID + amount + suffix + UPPER(MD5(secret)))).
// suffix is the currency for outbound requests and the status code for notifications.
func Sign(secret, merchantID, orderID string, amount decimal.Decimal, suffix string) string {
	return signWithDigest(upperMD5(secret), merchantID, orderID, amount, suffix)
}

// ComputeSignature signs an outbound checkout request.
func (g *Gateway) ComputeSignature(merchantID, orderID string, amount decimal.Decimal, currency string) string {
	return signWithDigest(g.secretHash, merchantID, orderID, amount, currency)
}

// VerifySignature recomputes the notification hash and compares it in constant time.
func (g *Gateway) VerifySignature(merchantID, orderID string, amount decimal.Decimal, statusCode, supplied string) bool {
	expected := signWithDigest(g.secretHash, merchantID, orderID, amount, statusCode)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// Verify checks a parsed notification.
func (g *Gateway) Verify(n domain.Notification) bool {
	return g.VerifySignature(n.MerchantID, n.OrderNumber, n.Amount, string(n.StatusCode), n.Signature)
}

// CheckoutForm builds the signed redirect for req.
func (g *Gateway) CheckoutForm(req domain.CheckoutRequest) domain.CheckoutForm {
	return domain.CheckoutForm{
		Action:     g.checkoutURL(),
		MerchantID: g.cfg.MerchantID,
		ReturnURL:  g.cfg.ReturnURL,
		CancelURL:  g.cfg.CancelURL,
		NotifyURL:  g.cfg.NotifyURL,
		OrderID:    req.OrderNumber,
		Items:      req.Items,
		Currency:   g.cfg.Currency,
		Amount:     FormatAmount(req.Amount),
		FirstName:  req.Customer.FirstName,
		LastName:   req.Customer.LastName,
		Email:      req.Customer.Email,
		Phone:      req.Customer.Phone,
		Address:    req.Customer.Address,
		City:       req.Customer.City,
		Country:    g.cfg.Country,
		Hash:       g.ComputeSignature(g.cfg.MerchantID, req.OrderNumber, req.Amount, g.cfg.Currency),
	}
}

// ParseNotification reads the provider's form-encoded callback. The amount is
// parsed as a decimal so its two-place rendering matches what was signed.
func ParseNotification(form url.Values) (domain.Notification, error) {
	n := domain.Notification{
		MerchantID:    strings.TrimSpace(form.Get("merchant_id")),
		OrderNumber:   strings.TrimSpace(form.Get("order_id")),
		PaymentID:     strings.TrimSpace(form.Get("payment_id")),
		Currency:      strings.TrimSpace(form.Get("payhere_currency")),
		StatusCode:    domain.StatusCode(strings.TrimSpace(form.Get("status_code"))),
		Signature:     strings.TrimSpace(form.Get("md5sig")),
		StatusMessage: form.Get("status_message"),
	}
	if err := n.Validate(); err != nil {
		return n, err
	}
	raw := strings.TrimSpace(form.Get("payhere_amount"))
	if raw == "" {
		return n, domain.ErrMissingField
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return n, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}
	n.Amount = amount
	return n, nil
}

func (g *Gateway) checkoutURL() string {
	if g.cfg.Mode == ModeLive {
		return liveCheckoutURL
	}
	return sandboxCheckoutURL
}

func signWithDigest(secretHash, merchantID, orderID string, amount decimal.Decimal, suffix string) string {
	return upperMD5(merchantID + orderID + FormatAmount(amount) + suffix + secretHash)
}

func upperMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
