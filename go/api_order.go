package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/storefront-api/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

const idempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the order engine.
type OrderAPI struct {
	service orderports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Post /api/orders
// Place an order from the submitted cart
// Retries carrying the same Idempotency-Key header return the original order.
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := orderhttpmapper.ToCreateOrderInput(currentActor(c), payload)
	input.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)
	order, err := api.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders/user
// Orders placed by the caller
func (api *OrderAPI) ListUserOrders(c *gin.Context) {
	orders, err := api.service.ListUserOrders(c.Request.Context(), currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /api/orders/:id
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders
// All orders, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Put /api/orders/:id/status
// Advance fulfilment
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload orderhttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), id, orderdomain.OrderStatus(payload.Status), payload.TrackingNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/orders/:id/payment
// Record a payment outcome reported outside the gateway
func (api *OrderAPI) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload orderhttpmapper.PaymentUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdatePaymentStatus(c.Request.Context(), id,
		orderdomain.PaymentStatus(payload.PaymentStatus), orderhttpmapper.ToPaymentResult(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}
