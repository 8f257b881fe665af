package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	paymentsdomain "github.com/Apurer/storefront-api/internal/domains/payments/domain"
	"github.com/Apurer/storefront-api/internal/domains/payments/gateway"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

// Webhook bodies. The gateway matches on these exact strings.
const (
	notifyOK       = "OK"
	notifyBadHash  = "Invalid hash"
	notifyNotFound = "Order not found"
	notifyFailed   = "Error processing notification"
)

// Notification outcomes reported to NotificationObserver.
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeUnknown  = "unknown_order"
	OutcomeError    = "error"
)

// GatewayConfig exposes the browser-safe merchant settings.
type GatewayConfig interface {
	PublicConfig() gateway.PublicConfig
}

// NotificationObserver counts webhook outcomes.
type NotificationObserver interface {
	ObserveGatewayNotification(outcome string)
}

// PaymentAPI serves checkout redirects and the gateway callback.
type PaymentAPI struct {
	orders   orderports.Service
	gateway  GatewayConfig
	observer NotificationObserver
}

// NewPaymentAPI wires dependencies. gw is nil when online payments are not configured.
func NewPaymentAPI(orders orderports.Service, gw GatewayConfig, observer NotificationObserver) PaymentAPI {
	return PaymentAPI{orders: orders, gateway: gw, observer: observer}
}

// createPaymentRequest names the order to pay and optional customer overrides.
type createPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

// Get /api/payment/config
// Merchant settings the storefront needs to render checkout
func (api *PaymentAPI) Config(c *gin.Context) {
	if api.gateway == nil {
		respondProblem(c, apierrors.ErrUnavailable.WithDetail("online payments are not configured"))
		return
	}
	c.JSON(http.StatusOK, api.gateway.PublicConfig())
}

// Post /api/payment/create
// Signed form fields for the hosted checkout redirect
func (api *PaymentAPI) CreatePayment(c *gin.Context) {
	var payload createPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	customer := paymentsdomain.Customer{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Address:   payload.Address,
		City:      payload.City,
	}
	form, err := api.orders.CreatePaymentRequest(c.Request.Context(), payload.OrderID, currentActor(c), customer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// Post /api/payment/payhere/notify
// Gateway server-to-server callback. Replies in plain text. A notification
// that no longer changes the order is acknowledged so the gateway stops retrying.
func (api *PaymentAPI) Notify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		api.reply(c, http.StatusBadRequest, notifyBadHash, OutcomeRejected)
		return
	}
	notification, err := gateway.ParseNotification(c.Request.PostForm)
	if err != nil {
		_ = c.Error(err)
		api.reply(c, http.StatusBadRequest, notifyBadHash, OutcomeRejected)
		return
	}
	_, err = api.orders.ApplyGatewayNotification(c.Request.Context(), notification)
	if err == nil {
		api.reply(c, http.StatusOK, notifyOK, OutcomeApplied)
		return
	}
	switch fault.Kind(err) {
	case fault.ErrConflict:
		api.reply(c, http.StatusOK, notifyOK, OutcomeIgnored)
	case fault.ErrIntegrity:
		api.reply(c, http.StatusBadRequest, notifyBadHash, OutcomeRejected)
	case fault.ErrNotFound:
		api.reply(c, http.StatusNotFound, notifyNotFound, OutcomeUnknown)
	default:
		_ = c.Error(err)
		api.reply(c, http.StatusInternalServerError, notifyFailed, OutcomeError)
	}
}

func (api *PaymentAPI) reply(c *gin.Context, status int, body, outcome string) {
	if api.observer != nil {
		api.observer.ObserveGatewayNotification(outcome)
	}
	c.String(status, body)
}
