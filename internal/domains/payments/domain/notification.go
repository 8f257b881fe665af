package domain

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// StatusCode is the provider's payment outcome code as sent on the wire.
type StatusCode string

const (
	StatusSuccess    StatusCode = "2"
	StatusPending    StatusCode = "0"
	StatusCanceled   StatusCode = "-1"
	StatusFailed     StatusCode = "-2"
	StatusChargeback StatusCode = "-3"
)

// Outcome is the provider-neutral result of a payment attempt.
type Outcome string

const (
	OutcomePaid        Outcome = "paid"
	OutcomePending     Outcome = "pending"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeFailed      Outcome = "failed"
	OutcomeChargedBack Outcome = "charged_back"
)

var (
	ErrMissingField  = errors.New("notification field is missing")
	ErrInvalidAmount = errors.New("notification amount is not a decimal")
)

// Outcome maps the wire code. Codes the provider may add later count as failures.
func (c StatusCode) Outcome() Outcome {
	switch c {
	case StatusSuccess:
		return OutcomePaid
	case StatusPending:
		return OutcomePending
	case StatusCanceled:
		return OutcomeCancelled
	case StatusChargeback:
		return OutcomeChargedBack
	default:
		return OutcomeFailed
	}
}

// Notification is an inbound provider callback for a previously requested payment.
type Notification struct {
	MerchantID    string
	OrderNumber   string
	PaymentID     string
	Amount        decimal.Decimal
	Currency      string
	StatusCode    StatusCode
	Signature     string
	StatusMessage string
}

// Validate checks that every field the signature covers is present.
func (n Notification) Validate() error {
	for _, v := range []string{n.MerchantID, n.OrderNumber, string(n.StatusCode), n.Signature} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	return nil
}

// Customer is the buyer block sent with a checkout redirect.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
}

// CheckoutRequest describes the payment the buyer is redirected to make.
type CheckoutRequest struct {
	OrderNumber string
	Items       string
	Amount      decimal.Decimal
	Customer    Customer
}

// CheckoutForm is the set of fields POSTed to the hosted checkout page.
type CheckoutForm struct {
	Action     string `json:"action"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Hash       string `json:"hash"`
}

// Values renders the form as url.Values for a server-side POST.
func (f CheckoutForm) Values() url.Values {
	return url.Values{
		"merchant_id": {f.MerchantID},
		"return_url":  {f.ReturnURL},
		"cancel_url":  {f.CancelURL},
		"notify_url":  {f.NotifyURL},
		"order_id":    {f.OrderID},
		"items":       {f.Items},
		"currency":    {f.Currency},
		"amount":      {f.Amount},
		"first_name":  {f.FirstName},
		"last_name":   {f.LastName},
		"email":       {f.Email},
		"phone":       {f.Phone},
		"address":     {f.Address},
		"city":        {f.City},
		"country":     {f.Country},
		"hash":        {f.Hash},
	}
}
