package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
	paymentsdomain "github.com/Apurer/storefront-api/internal/domains/payments/domain"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const (
	defaultTimeout  = 5 * time.Second
	maxSaveAttempts = 3
)

// Service is the order engine.
type Service struct {
	repo      ports.Repository
	inventory ports.Inventory
	gateway   ports.PaymentGateway
	notifier  ports.Notifier
	keys      ports.IdempotencyStore
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	newNumber domain.NumberGenerator
	timeout   time.Duration
}

type Option func(*Service)

// WithGateway enables online payments and notification handling.
func WithGateway(g ports.PaymentGateway) Option {
	return func(s *Service) { s.gateway = g }
}

// WithNotifier sets the confirmation sink.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithIdempotencyStore lets checkout retries carrying the same key replay the
// original order.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.keys = store }
}

// WithLogger records best-effort failures that never reach the caller.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

func WithNumberGenerator(next domain.NumberGenerator) Option {
	return func(s *Service) {
		if next != nil {
			s.newNumber = next
		}
	}
}

// WithTimeout bounds each dependency call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(repo ports.Repository, inventory ports.Inventory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		inventory: inventory,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		newID:     uuid.NewString,
		newNumber: domain.DefaultOrderNumber,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder prices the cart from the catalog, reserves stock for every line
// and persists the order. Either every line is reserved or none is.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	const op = "orders.create"
	if strings.TrimSpace(input.Actor.UserID) == "" {
		return nil, mapError(op, domain.ErrMissingOwner)
	}
	if len(input.Items) == 0 {
		return nil, mapError(op, domain.ErrNoItems)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.keys != nil {
		var err error
		if fingerprint, err = FingerprintCheckout(input); err != nil {
			return nil, mapError(op, err)
		}
		if replay, err := s.replay(ctx, input.Actor, key, fingerprint); replay != nil || err != nil {
			return replay, mapError(op, err)
		}
	}
	lines := make([]domain.LineItem, 0, len(input.Items))
	for _, req := range input.Items {
		line, err := s.priceLine(ctx, req)
		if err != nil {
			return nil, mapError(op, err)
		}
		lines = append(lines, line)
	}

	now := s.now()
	order, err := domain.NewOrder(s.newID(), s.newNumber(now), input.Actor.UserID, lines,
		input.ShippingAddress, input.PaymentMethod, input.Notes)
	if err != nil {
		return nil, mapError(op, err)
	}
	if input.ClientTotals != nil && !order.Totals.Matches(*input.ClientTotals) {
		return nil, mapError(op, fmt.Errorf("%w: expected total %s", domain.ErrTotalsMismatch, order.Totals.Total.StringFixed(2)))
	}

	for i, line := range order.Items {
		if err := s.decrement(ctx, line); err != nil {
			s.releaseStock(ctx, order.OrderNumber, order.Items[:i])
			return nil, mapError(op, err)
		}
	}

	order.CreatedAt = now
	order.UpdatedAt = now
	saved, err := s.save(ctx, order)
	if err != nil {
		s.releaseStock(ctx, order.OrderNumber, order.Items)
		return nil, mapError(op, err)
	}
	if fingerprint != "" {
		winner, err := s.remember(ctx, input.Actor, key, fingerprint, saved)
		if err != nil || winner != saved {
			return winner, mapError(op, err)
		}
	}
	s.dispatchConfirmation(ctx, saved, input.Actor)
	return saved, nil
}

// replay returns the order previously created under key, or nil when the key is new.
func (s *Service) replay(ctx context.Context, actor identity.Actor, key, fingerprint string) (*domain.Order, error) {
	bounded, cancel := s.bound(ctx)
	record, err := s.keys.Get(bounded, actor.UserID, key)
	cancel()
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.load(ctx, record.OrderID)
}

// remember binds key to the saved order. When a concurrent checkout with the
// same key won the race, the duplicate is cancelled and the winner returned.
func (s *Service) remember(ctx context.Context, actor identity.Actor, key, fingerprint string, saved *domain.Order) (*domain.Order, error) {
	bounded, cancel := s.bound(ctx)
	record, err := s.keys.Save(bounded, ports.IdempotencyRecord{
		Key:         key,
		UserID:      actor.UserID,
		RequestHash: fingerprint,
		OrderID:     saved.ID,
	})
	cancel()
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, ports.ErrIdempotencyConflict) || record == nil {
		s.logger.Warn("failed to record checkout idempotency key",
			slog.String("order_number", saved.OrderNumber), slog.String("error", err.Error()))
		return saved, nil
	}
	if _, cancelErr := s.UpdateOrderStatus(ctx, saved.ID, domain.StatusCancelled, ""); cancelErr != nil {
		s.logger.Warn("failed to cancel duplicate checkout",
			slog.String("order_number", saved.OrderNumber), slog.String("error", cancelErr.Error()))
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.load(ctx, record.OrderID)
}

// GetOrder returns an order to its owner or to an admin.
func (s *Service) GetOrder(ctx context.Context, id string, actor identity.Actor) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, mapError("orders.get", err)
	}
	if !actor.CanAccess(order.UserID) {
		return nil, mapError("orders.get", ErrNotOwner)
	}
	return order, nil
}

// ListUserOrders returns the actor's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, actor identity.Actor) ([]*domain.Order, error) {
	if actor.UserID == "" {
		return nil, mapError("orders.list_user", domain.ErrMissingOwner)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	orders, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, mapError("orders.list_user", err)
	}
	return orders, nil
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError("orders.list", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves fulfilment along the legal transitions.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error) {
	order, _, err := s.mutate(ctx, func(ctx context.Context) (*domain.Order, error) {
		return s.load(ctx, id)
	}, func(o *domain.Order) (domain.Effect, error) {
		return o.ApplyOrderStatus(status, trackingNumber, s.now())
	})
	if err != nil {
		return nil, mapError("orders.update_status", err)
	}
	return order, nil
}

// UpdatePaymentStatus records a settlement change made by an admin.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, result *domain.PaymentResult) (*domain.Order, error) {
	order, _, err := s.mutate(ctx, func(ctx context.Context) (*domain.Order, error) {
		return s.load(ctx, id)
	}, func(o *domain.Order) (domain.Effect, error) {
		return o.ApplyPayment(status, result, s.now())
	})
	if err != nil {
		return nil, mapError("orders.update_payment", err)
	}
	return order, nil
}

// ApplyGatewayNotification authenticates a gateway callback and applies its
// outcome. Replaying the same notification leaves the order unchanged.
func (s *Service) ApplyGatewayNotification(ctx context.Context, n paymentsdomain.Notification) (*domain.Order, error) {
	const op = "orders.apply_notification"
	if s.gateway == nil {
		return nil, fault.Dependency(op, ErrGatewayNotConfigured)
	}
	if !s.gateway.Verify(n) {
		return nil, mapError(op, domain.ErrSignatureMismatch)
	}
	if n.MerchantID != s.gateway.MerchantID() {
		return nil, mapError(op, domain.ErrMerchantMismatch)
	}
	next := paymentStatusFor(n.StatusCode.Outcome())
	result := &domain.PaymentResult{
		ID:      n.PaymentID,
		Status:  string(n.StatusCode.Outcome()),
		Message: n.StatusMessage,
	}
	order, _, err := s.mutate(ctx, func(ctx context.Context) (*domain.Order, error) {
		ctx, cancel := s.bound(ctx)
		defer cancel()
		return s.repo.GetByOrderNumber(ctx, n.OrderNumber)
	}, func(o *domain.Order) (domain.Effect, error) {
		if !o.Totals.Total.Round(2).Equal(n.Amount.Round(2)) {
			return domain.Effect{}, fmt.Errorf("%w: got %s want %s", domain.ErrAmountMismatch,
				n.Amount.StringFixed(2), o.Totals.Total.StringFixed(2))
		}
		return o.ApplyPayment(next, result, s.now())
	})
	if err != nil {
		return nil, mapError(op, err)
	}
	return order, nil
}

// CreatePaymentRequest signs the hosted checkout redirect for an unpaid online order.
func (s *Service) CreatePaymentRequest(ctx context.Context, orderID string, actor identity.Actor, customer paymentsdomain.Customer) (paymentsdomain.CheckoutForm, error) {
	const op = "orders.create_payment"
	if s.gateway == nil {
		return paymentsdomain.CheckoutForm{}, fault.Dependency(op, ErrGatewayNotConfigured)
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return paymentsdomain.CheckoutForm{}, mapError(op, err)
	}
	if order.UserID != actor.UserID {
		return paymentsdomain.CheckoutForm{}, mapError(op, ErrNotOwner)
	}
	if !order.PaymentMethod.IsOnline() || order.PaymentStatus != domain.PaymentPending || order.OrderStatus == domain.StatusCancelled {
		return paymentsdomain.CheckoutForm{}, mapError(op, domain.ErrNotPayable)
	}
	return s.gateway.CheckoutForm(paymentsdomain.CheckoutRequest{
		OrderNumber: order.OrderNumber,
		Items:       describeItems(order.Items),
		Amount:      order.Totals.Total,
		Customer:    fillCustomer(customer, actor, order.ShippingAddress),
	}), nil
}

// HasPurchased reports whether the user has a paid order containing the product.
func (s *Service) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.HasPaidOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return false, mapError("orders.has_purchased", err)
	}
	return ok, nil
}

// mutate runs a read-modify-write cycle, re-reading when another writer saved
// the order in between. Stock is released after the winning save.
func (s *Service) mutate(ctx context.Context, load func(context.Context) (*domain.Order, error), change func(*domain.Order) (domain.Effect, error)) (*domain.Order, domain.Effect, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		order, err := load(ctx)
		if err != nil {
			return nil, domain.Effect{}, err
		}
		effect, err := change(order)
		if err != nil {
			return nil, domain.Effect{}, err
		}
		if !effect.Changed {
			return order, effect, nil
		}
		saved, err := s.save(ctx, order)
		if errors.Is(err, ports.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return nil, domain.Effect{}, err
		}
		if effect.ReleaseStock {
			s.releaseStock(ctx, saved.OrderNumber, saved.Items)
		}
		return saved, effect, nil
	}
	return nil, domain.Effect{}, ports.ErrStaleVersion
}

func (s *Service) priceLine(ctx context.Context, req ports.ItemRequest) (domain.LineItem, error) {
	line := domain.LineItem{
		ProductID: strings.TrimSpace(req.ProductID),
		Quantity:  req.Quantity,
		Size:      strings.ToUpper(strings.TrimSpace(req.Size)),
		Color:     strings.TrimSpace(req.Color),
	}
	if err := domain.ValidateItem(line); err != nil {
		return line, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	product, err := s.inventory.FindProduct(ctx, line.ProductID)
	if errors.Is(err, fault.ErrNotFound) {
		return line, fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
	}
	if err != nil {
		return line, err
	}
	if !product.IsActive {
		return line, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}
	line.Name = product.Name
	line.ImageURL = product.ImageURL
	line.UnitPrice = product.EffectivePrice()
	return line, nil
}

func (s *Service) decrement(ctx context.Context, line domain.LineItem) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inventory.DecrementStock(ctx, line.ProductID, line.Size, line.Quantity)
}

// releaseStock returns reserved units. It runs detached from the request so a
// client disconnect cannot strand a reservation; failures are logged.
func (s *Service) releaseStock(ctx context.Context, orderNumber string, items []domain.LineItem) {
	base := context.WithoutCancel(ctx)
	for _, item := range items {
		rctx, cancel := context.WithTimeout(base, s.timeout)
		err := s.inventory.Restock(rctx, item.ProductID, item.Size, item.Quantity)
		cancel()
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to release stock",
				slog.String("order.number", orderNumber),
				slog.String("product.id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Service) dispatchConfirmation(ctx context.Context, order *domain.Order, actor identity.Actor) {
	if s.notifier == nil {
		return
	}
	confirmation := ports.ConfirmationFromOrder(order, actor.Email, actor.Name)
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.notifier.NotifyOrderPlaced(dctx, confirmation); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order confirmation not dispatched",
			slog.String("order.number", order.OrderNumber),
			slog.String("error", err.Error()))
	}
}

func (s *Service) load(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ports.ErrNotFound
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

func (s *Service) save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.Save(ctx, order)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func paymentStatusFor(outcome paymentsdomain.Outcome) domain.PaymentStatus {
	switch outcome {
	case paymentsdomain.OutcomePaid:
		return domain.PaymentPaid
	case paymentsdomain.OutcomePending:
		return domain.PaymentPending
	case paymentsdomain.OutcomeCancelled:
		return domain.PaymentCancelled
	case paymentsdomain.OutcomeChargedBack:
		return domain.PaymentChargedBack
	default:
		return domain.PaymentFailed
	}
}

func describeItems(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

func fillCustomer(c paymentsdomain.Customer, actor identity.Actor, address domain.Address) paymentsdomain.Customer {
	if c.FirstName == "" && c.LastName == "" {
		name := actor.Name
		if name == "" {
			name = address.FullName
		}
		first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
		c.FirstName, c.LastName = first, strings.TrimSpace(last)
	}
	if c.Email == "" {
		c.Email = actor.Email
	}
	if c.Phone == "" {
		c.Phone = address.Phone
	}
	if c.Address == "" {
		c.Address = address.Street
	}
	if c.City == "" {
		c.City = address.City
	}
	return c
}

var _ ports.Service = (*Service)(nil)
