package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	paymentsdomain "github.com/Apurer/storefront-api/internal/domains/payments/domain"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order engine with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("user.id", input.Actor.UserID), attribute.Int("order.lines", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("user.id", input.Actor.UserID), slog.Int("lines", len(input.Items)))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("user.id", input.Actor.UserID))
	}
	span.SetAttributes(attribute.String("order.number", result.OrderNumber))
	s.metrics.recordCreated(ctx, result.PaymentMethod)
	s.logInfo(ctx, "order created",
		slog.String("order.id", result.ID),
		slog.String("order.number", result.OrderNumber),
		slog.String("total", result.Totals.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id string, actor identity.Actor) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id), slog.String("user.id", actor.UserID))
	}
	return result, nil
}

func (s *Service) ListUserOrders(ctx context.Context, actor identity.Actor) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListUserOrders", trace.WithAttributes(attribute.String("user.id", actor.UserID)))
	defer span.End()

	result, err := s.inner.ListUserOrders(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user orders", slog.String("user.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("result.count", len(result)))
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	result, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("result.count", len(result)))
	return result, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status orderdomain.OrderStatus, trackingNumber string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.UpdateOrderStatus(ctx, id, status, trackingNumber)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", id), slog.String("status", string(status)))
	}
	s.metrics.recordTransition(ctx, "order", string(result.OrderStatus))
	s.logInfo(ctx, "order status updated", slog.String("order.id", id), slog.String("status", string(result.OrderStatus)))
	return result, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status orderdomain.PaymentStatus, result *orderdomain.PaymentResult) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePaymentStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("payment.status", string(status))))
	defer span.End()

	order, err := s.inner.UpdatePaymentStatus(ctx, id, status, result)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update payment status", slog.String("order.id", id), slog.String("status", string(status)))
	}
	s.metrics.recordTransition(ctx, "payment", string(order.PaymentStatus))
	s.logInfo(ctx, "payment status updated", slog.String("order.id", id), slog.String("status", string(order.PaymentStatus)))
	return order, nil
}

// ApplyGatewayNotification logs integrity failures as security events at WARN.
func (s *Service) ApplyGatewayNotification(ctx context.Context, n paymentsdomain.Notification) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ApplyGatewayNotification",
		trace.WithAttributes(attribute.String("order.number", n.OrderNumber), attribute.String("payment.status_code", string(n.StatusCode))))
	defer span.End()

	attrs := []slog.Attr{
		slog.String("order.number", n.OrderNumber),
		slog.String("merchant.id", n.MerchantID),
		slog.String("status_code", string(n.StatusCode)),
		slog.String("amount", n.Amount.StringFixed(2)),
	}
	order, err := s.inner.ApplyGatewayNotification(ctx, n)
	if err != nil {
		switch {
		case errors.Is(err, fault.ErrIntegrity):
			span.RecordError(err)
			span.SetStatus(codes.Error, "integrity check failed")
			s.metrics.recordNotification(ctx, "rejected")
			s.logger.LogAttrs(ctx, slog.LevelWarn, "gateway notification rejected",
				append(attrs, slog.Bool("security", true), slog.String("error", err.Error()))...)
			return nil, err
		case errors.Is(err, fault.ErrConflict):
			s.metrics.recordNotification(ctx, "stale")
			s.logger.LogAttrs(ctx, slog.LevelWarn, "stale gateway notification ignored", append(attrs, slog.String("error", err.Error()))...)
			return nil, err
		default:
			s.metrics.recordNotification(ctx, "error")
			return nil, s.handleError(ctx, span, err, "failed to apply gateway notification", attrs...)
		}
	}
	s.metrics.recordNotification(ctx, "applied")
	s.logInfo(ctx, "gateway notification applied",
		append(attrs, slog.String("payment.status", string(order.PaymentStatus)), slog.String("order.status", string(order.OrderStatus)))...)
	return order, nil
}

func (s *Service) CreatePaymentRequest(ctx context.Context, orderID string, actor identity.Actor, customer paymentsdomain.Customer) (paymentsdomain.CheckoutForm, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreatePaymentRequest", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	form, err := s.inner.CreatePaymentRequest(ctx, orderID, actor, customer)
	if err != nil {
		return form, s.handleError(ctx, span, err, "failed to create payment request", slog.String("order.id", orderID))
	}
	s.logInfo(ctx, "payment request signed", slog.String("order.number", form.OrderID), slog.String("amount", form.Amount))
	return form, nil
}

func (s *Service) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.HasPurchased")
	defer span.End()

	ok, err := s.inner.HasPurchased(ctx, userID, productID)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check purchase", slog.String("user.id", userID), slog.String("product.id", productID))
	}
	return ok, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger == nil {
		return err
	}
	level := slog.LevelWarn
	if fault.IsRetryable(err) || fault.Kind(err) == nil {
		level = slog.LevelError
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
	transitions   metric.Int64Counter
	notifications metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of orders created"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Applied order and payment transitions"))
	notifications, _ := m.Int64Counter("orders.service.gateway_notifications", metric.WithDescription("Gateway notifications by outcome"))
	return serviceMetrics{ordersCreated: ordersCreated, transitions: transitions, notifications: notifications}
}

func (m serviceMetrics) recordCreated(ctx context.Context, method orderdomain.PaymentMethod) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.method", string(method))))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, kind, status string) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind), attribute.String("status", status)))
	}
}

func (m serviceMetrics) recordNotification(ctx context.Context, outcome string) {
	if m.notifications != nil {
		m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

var _ orderports.Service = (*Service)(nil)
