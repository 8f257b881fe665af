package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validAddress() Address {
	return Address{FullName: "Ama Perera", Phone: "0771234567", Street: "12 Galle Rd", City: "Colombo", PostalCode: "00300", Country: "Sri Lanka"}
}

func newPendingOrder(t *testing.T) *Order {
	t.Helper()
	items := []LineItem{
		{ProductID: "p-1", Quantity: 2, UnitPrice: dec("30.00")},
		{ProductID: "p-2", Quantity: 1, UnitPrice: dec("30.00")},
	}
	o, err := NewOrder("o-1", "ORD1", "u-1", items, validAddress(), PaymentPayHere, "")
	require.NoError(t, err)
	return o
}

func TestCalculateTotals(t *testing.T) {
	totals := CalculateTotals([]LineItem{
		{Quantity: 2, UnitPrice: dec("30")},
		{Quantity: 1, UnitPrice: dec("30")},
	})
	assert.Equal(t, "90.00", totals.Items.StringFixed(2))
	assert.Equal(t, "7.20", totals.Tax.StringFixed(2))
	assert.Equal(t, "10.00", totals.Shipping.StringFixed(2))
	assert.Equal(t, "107.20", totals.Total.StringFixed(2))
	assert.True(t, totals.Items.Add(totals.Tax).Add(totals.Shipping).Equal(totals.Total))

	empty := CalculateTotals(nil)
	assert.True(t, empty.Shipping.IsZero())
	assert.True(t, empty.Total.IsZero())
}

func TestTotalsIdentityHoldsForAwkwardPrices(t *testing.T) {
	for _, price := range []string{"0.01", "19.99", "33.33", "7.125", "1234.565"} {
		totals := CalculateTotals([]LineItem{{Quantity: 3, UnitPrice: dec(price)}})
		assert.True(t, totals.Items.Add(totals.Tax).Add(totals.Shipping).Equal(totals.Total), price)
	}
}

func TestTotalsMatchesWithinOneCent(t *testing.T) {
	server := CalculateTotals([]LineItem{{Quantity: 1, UnitPrice: dec("90")}})
	client := server
	client.Total = dec("107.21")
	assert.True(t, server.Matches(client))
	client.Total = dec("107.30")
	assert.False(t, server.Matches(client))
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder("o", "n", "u", nil, validAddress(), PaymentCOD, "")
	require.ErrorIs(t, err, ErrNoItems)

	_, err = NewOrder("o", "n", "u", []LineItem{{ProductID: "p", Quantity: 0}}, validAddress(), PaymentCOD, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder("o", "n", "u", []LineItem{{ProductID: "p", Quantity: 1}}, Address{}, PaymentCOD, "")
	require.ErrorIs(t, err, ErrMissingAddress)

	_, err = NewOrder("o", "n", "u", []LineItem{{ProductID: "p", Quantity: 1}}, validAddress(), "card", "")
	require.ErrorIs(t, err, ErrInvalidMethod)
}

func TestApplyPayment_PaidConfirmsAndStampsOnce(t *testing.T) {
	o := newPendingOrder(t)
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	effect, err := o.ApplyPayment(PaymentPaid, &PaymentResult{ID: "pay-1", Status: "ok"}, first)
	require.NoError(t, err)
	assert.True(t, effect.Changed)
	assert.True(t, effect.Confirmed)
	assert.True(t, o.IsPaid)
	assert.Equal(t, first, *o.PaidAt)
	assert.Equal(t, StatusConfirmed, o.OrderStatus)
	assert.Equal(t, first, o.PaymentResult.UpdatedAt)

	again, err := o.ApplyPayment(PaymentPaid, &PaymentResult{ID: "pay-1"}, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, first, *o.PaidAt)
}

func TestApplyPayment_IllegalTransitions(t *testing.T) {
	o := newPendingOrder(t)
	now := time.Now()
	_, err := o.ApplyPayment(PaymentPaid, nil, now)
	require.NoError(t, err)

	_, err = o.ApplyPayment(PaymentPending, nil, now)
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = o.ApplyPayment(PaymentFailed, nil, now)
	require.ErrorIs(t, err, ErrIllegalTransition)

	_, err = o.ApplyPayment(PaymentChargedBack, nil, now)
	require.NoError(t, err)
	assert.Equal(t, PaymentChargedBack, o.PaymentStatus)
	assert.True(t, o.IsPaid)
}

func TestApplyPayment_FailureCancelsAndReleasesOnce(t *testing.T) {
	o := newPendingOrder(t)
	effect, err := o.ApplyPayment(PaymentFailed, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, effect.ReleaseStock)
	assert.Equal(t, StatusCancelled, o.OrderStatus)

	effect, err = o.ApplyOrderStatus(StatusCancelled, "", time.Now())
	require.NoError(t, err)
	assert.False(t, effect.ReleaseStock)
}

func TestApplyOrderStatus_Table(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusProcessing, StatusConfirmed, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusProcessing, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusProcessing, false},
	}
	for _, tc := range cases {
		o := newPendingOrder(t)
		o.OrderStatus = tc.from
		_, err := o.ApplyOrderStatus(tc.to, "", time.Now())
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, o.OrderStatus)
		} else {
			assert.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, o.OrderStatus)
		}
	}
}

func TestApplyOrderStatus_DeliveredStampsAndTracking(t *testing.T) {
	o := newPendingOrder(t)
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := o.ApplyOrderStatus(StatusShipped, "TRK-1", now)
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", o.TrackingNumber)

	_, err = o.ApplyOrderStatus(StatusDelivered, "", now)
	require.NoError(t, err)
	assert.True(t, o.IsDelivered)
	assert.Equal(t, now, *o.DeliveredAt)
	assert.Equal(t, "TRK-1", o.TrackingNumber)
}

func TestApplyOrderStatus_CancelPendingPaymentCancelsPayment(t *testing.T) {
	o := newPendingOrder(t)
	effect, err := o.ApplyOrderStatus(StatusCancelled, "", time.Now())
	require.NoError(t, err)
	assert.True(t, effect.ReleaseStock)
	assert.Equal(t, PaymentCancelled, o.PaymentStatus)

	_, err = o.ApplyPayment(PaymentPaid, nil, time.Now())
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestDefaultOrderNumberFormat(t *testing.T) {
	number := DefaultOrderNumber(time.UnixMilli(1700000000000))
	assert.Regexp(t, regexp.MustCompile(`^ORD1700000000000\d{3}$`), number)
}
