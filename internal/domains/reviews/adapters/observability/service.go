package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/storefront-api/internal/domains/reviews/domain"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/observability/service"

// Service decorates the review aggregator with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	reviews metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.reviews, _ = m.Int64Counter("reviews.service.writes", metric.WithDescription("Review writes by action"))
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
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) CreateReview(ctx context.Context, input ports.CreateReviewInput) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.CreateReview",
		trace.WithAttributes(attribute.String("product.id", input.ProductID), attribute.Int("review.rating", input.Rating)))
	defer span.End()

	review, err := s.inner.CreateReview(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create review",
			slog.String("product.id", input.ProductID), slog.String("user.id", input.Actor.UserID))
	}
	s.record(ctx, "created")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review created",
		slog.String("review.id", review.ID), slog.String("product.id", review.ProductID), slog.Bool("verified", review.VerifiedPurchase))
	return review, nil
}

func (s *Service) ListProductReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListProductReviews", trace.WithAttributes(attribute.String("product.id", productID)))
	defer span.End()

	reviews, err := s.inner.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list reviews", slog.String("product.id", productID))
	}
	span.SetAttributes(attribute.Int("result.count", len(reviews)))
	return reviews, nil
}

func (s *Service) MarkHelpful(ctx context.Context, id string, actor identity.Actor) (*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.MarkHelpful", trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()

	review, err := s.inner.MarkHelpful(ctx, id, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to mark review helpful", slog.String("review.id", id))
	}
	s.record(ctx, "helpful")
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, id string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.DeleteReview", trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()

	if err := s.inner.DeleteReview(ctx, id, actor); err != nil {
		return s.handleError(ctx, span, err, "failed to delete review", slog.String("review.id", id), slog.String("user.id", actor.UserID))
	}
	s.record(ctx, "deleted")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "review deleted", slog.String("review.id", id))
	return nil
}

func (s *Service) record(ctx context.Context, action string) {
	if s.reviews != nil {
		s.reviews.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	}
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := slog.LevelWarn
	if fault.IsRetryable(err) || fault.Kind(err) == nil {
		level = slog.LevelError
	}
	s.logger.LogAttrs(ctx, level, msg, append(attrs, slog.String("error", err.Error()))...)
	return err
}

var _ ports.Service = (*Service)(nil)
