package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/observability/service"

// Service traces wishlist operations and logs failures.
type Service struct {
	inner  ports.Service
	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		if tr != nil {
			s.tracer = tr
		}
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Get(ctx context.Context, userID string) (ports.View, error) {
	return s.trace(ctx, "WishlistService.Get", userID, "", func(ctx context.Context) (ports.View, error) {
		return s.inner.Get(ctx, userID)
	})
}

func (s *Service) Add(ctx context.Context, userID, productID string) (ports.View, error) {
	return s.trace(ctx, "WishlistService.Add", userID, productID, func(ctx context.Context) (ports.View, error) {
		return s.inner.Add(ctx, userID, productID)
	})
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (ports.View, error) {
	return s.trace(ctx, "WishlistService.Remove", userID, productID, func(ctx context.Context) (ports.View, error) {
		return s.inner.Remove(ctx, userID, productID)
	})
}

func (s *Service) Clear(ctx context.Context, userID string) (ports.View, error) {
	return s.trace(ctx, "WishlistService.Clear", userID, "", func(ctx context.Context) (ports.View, error) {
		return s.inner.Clear(ctx, userID)
	})
}

func (s *Service) trace(ctx context.Context, name, userID, productID string, call func(context.Context) (ports.View, error)) (ports.View, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("user.id", userID), attribute.String("product.id", productID)))
	defer span.End()

	view, err := call(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelWarn
		if fault.IsRetryable(err) || fault.Kind(err) == nil {
			level = slog.LevelError
		}
		s.logger.LogAttrs(ctx, level, "wishlist operation failed",
			slog.String("operation", name), slog.String("user.id", userID), slog.String("product.id", productID), slog.String("error", err.Error()))
		return view, err
	}
	span.SetAttributes(attribute.Int("wishlist.size", len(view.Entries)))
	return view, nil
}

var _ ports.Service = (*Service)(nil)
