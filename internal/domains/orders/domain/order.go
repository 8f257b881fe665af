package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the buyer settles the order.
type PaymentMethod string

const (
	PaymentPayHere PaymentMethod = "payhere"
	PaymentCOD     PaymentMethod = "cod"
)

// IsOnline reports whether settlement goes through the hosted gateway.
func (m PaymentMethod) IsOnline() bool { return m == PaymentPayHere }

// PaymentStatus tracks settlement of the order.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentFailed      PaymentStatus = "failed"
	PaymentCancelled   PaymentStatus = "cancelled"
	PaymentChargedBack PaymentStatus = "charged_back"
)

// OrderStatus tracks fulfilment of the order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var (
	ErrNoItems             = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be greater than zero")
	ErrMissingProduct      = errors.New("item product id is required")
	ErrMissingAddress      = errors.New("shipping address is incomplete")
	ErrInvalidMethod       = errors.New("payment method is not supported")
	ErrInvalidStatus       = errors.New("status is not recognised")
	ErrIllegalTransition   = errors.New("status transition is not allowed")
	ErrTotalsMismatch      = errors.New("submitted totals do not match the server calculation")
	ErrNotPayable          = errors.New("order is not awaiting online payment")
	ErrNotesTooLong        = errors.New("order notes cannot exceed 500 characters")
	ErrMissingOwner        = errors.New("order owner is required")
	ErrNegativeUnitPrice   = errors.New("item unit price cannot be negative")
	ErrTrackingNumberLimit = errors.New("tracking number cannot exceed 100 characters")

	ErrSignatureMismatch = errors.New("notification signature does not match")
	ErrMerchantMismatch  = errors.New("notification merchant does not match")
	ErrAmountMismatch    = errors.New("notification amount does not match the order total")
)

// LineItem is a purchased product with the price captured at order time.
type LineItem struct {
	ProductID string
	Name      string
	ImageURL  string
	Quantity  int
	UnitPrice decimal.Decimal
	Size      string
	Color     string
}

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Address is the delivery destination.
type Address struct {
	FullName   string
	Phone      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Validate requires the fields a courier needs.
func (a Address) Validate() error {
	for _, v := range []string{a.FullName, a.Phone, a.Street, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingAddress
		}
	}
	return nil
}

// PaymentResult is what the gateway or an admin reported for the payment.
type PaymentResult struct {
	ID        string
	Status    string
	Message   string
	UpdatedAt time.Time
}

// Order is the aggregate the engine owns. Version increases on every save
// and guards concurrent read-modify-write cycles.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	Items           []LineItem
	ShippingAddress Address
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	OrderStatus     OrderStatus
	Totals          Totals
	PaymentResult   *PaymentResult
	TrackingNumber  string
	Notes           string
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	StockReleased   bool
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder builds a pending order from priced line items.
func NewOrder(id, number, userID string, items []LineItem, address Address, method PaymentMethod, notes string) (*Order, error) {
	o := &Order{
		ID:              id,
		OrderNumber:     number,
		UserID:          userID,
		Items:           append([]LineItem(nil), items...),
		ShippingAddress: address,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		OrderStatus:     StatusProcessing,
		Notes:           strings.TrimSpace(notes),
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Totals = CalculateTotals(o.Items)
	return o, nil
}

// Validate enforces the shape of an order before it is priced.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return ErrMissingOwner
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if err := ValidateItem(item); err != nil {
			return err
		}
		if item.UnitPrice.IsNegative() {
			return ErrNegativeUnitPrice
		}
	}
	if err := o.ShippingAddress.Validate(); err != nil {
		return err
	}
	if !IsValidPaymentMethod(o.PaymentMethod) {
		return ErrInvalidMethod
	}
	if len(o.Notes) > 500 {
		return ErrNotesTooLong
	}
	return nil
}

// ValidateItem checks a requested line before it is priced.
func ValidateItem(item LineItem) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return ErrMissingProduct
	}
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Effect reports what a transition changed so the caller can run side effects.
type Effect struct {
	Changed      bool
	ReleaseStock bool
	Confirmed    bool
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusConfirmed, StatusShipped, StatusCancelled},
	StatusConfirmed:  {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentPaid:    {PaymentChargedBack},
}

// CanTransitionOrder reports whether from → to is legal.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether from → to is legal.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyOrderStatus moves the fulfilment state. Re-applying the current state
// only updates the tracking number.
func (o *Order) ApplyOrderStatus(next OrderStatus, tracking string, now time.Time) (Effect, error) {
	if !IsValidOrderStatus(next) {
		return Effect{}, ErrInvalidStatus
	}
	tracking = strings.TrimSpace(tracking)
	if len(tracking) > 100 {
		return Effect{}, ErrTrackingNumberLimit
	}
	var effect Effect
	if tracking != "" && tracking != o.TrackingNumber {
		o.TrackingNumber = tracking
		effect.Changed = true
	}
	if next == o.OrderStatus {
		o.touch(effect, now)
		return effect, nil
	}
	if !CanTransitionOrder(o.OrderStatus, next) {
		return Effect{}, fmt.Errorf("%w: order %s -> %s", ErrIllegalTransition, o.OrderStatus, next)
	}
	o.OrderStatus = next
	effect.Changed = true
	switch next {
	case StatusDelivered:
		o.IsDelivered = true
		o.DeliveredAt = timePtr(now)
	case StatusCancelled:
		if o.PaymentStatus == PaymentPending {
			o.PaymentStatus = PaymentCancelled
		}
		effect.ReleaseStock = o.markStockReleased()
	}
	o.touch(effect, now)
	return effect, nil
}

// ApplyPayment moves the settlement state. result is stored whenever the state
// changes. Re-applying the current state is a no-op.
func (o *Order) ApplyPayment(next PaymentStatus, result *PaymentResult, now time.Time) (Effect, error) {
	if !IsValidPaymentStatus(next) {
		return Effect{}, ErrInvalidStatus
	}
	if next == o.PaymentStatus {
		return Effect{}, nil
	}
	if !CanTransitionPayment(o.PaymentStatus, next) {
		return Effect{}, fmt.Errorf("%w: payment %s -> %s", ErrIllegalTransition, o.PaymentStatus, next)
	}
	o.PaymentStatus = next
	effect := Effect{Changed: true}
	if result != nil {
		r := *result
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
		o.PaymentResult = &r
	}
	switch next {
	case PaymentPaid:
		if !o.IsPaid {
			o.IsPaid = true
			o.PaidAt = timePtr(now)
		}
		if o.OrderStatus == StatusProcessing {
			o.OrderStatus = StatusConfirmed
			effect.Confirmed = true
		}
	case PaymentFailed, PaymentCancelled:
		if o.OrderStatus == StatusProcessing || o.OrderStatus == StatusConfirmed {
			o.OrderStatus = StatusCancelled
			effect.ReleaseStock = o.markStockReleased()
		}
	}
	o.touch(effect, now)
	return effect, nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	if o.PaymentResult != nil {
		r := *o.PaymentResult
		clone.PaymentResult = &r
	}
	if o.PaidAt != nil {
		clone.PaidAt = timePtr(*o.PaidAt)
	}
	if o.DeliveredAt != nil {
		clone.DeliveredAt = timePtr(*o.DeliveredAt)
	}
	return &clone
}

func (o *Order) markStockReleased() bool {
	if o.StockReleased {
		return false
	}
	o.StockReleased = true
	return true
}

func (o *Order) touch(effect Effect, now time.Time) {
	if effect.Changed {
		o.UpdatedAt = now
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentPayHere || m == PaymentCOD
}

func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled, PaymentChargedBack:
		return true
	}
	return false
}
