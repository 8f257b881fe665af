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

	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) CreateProduct(ctx context.Context, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	result, err := s.inner.CreateProduct(ctx, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product")
	}
	span.SetAttributes(attribute.String("product.id", result.ID))
	s.logInfo(ctx, "product created", slog.String("product.id", result.ID), slog.String("category", string(result.Category)))
	return result, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	result, err := s.inner.UpdateProduct(ctx, id, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.String("product.id", id))
	}
	s.logInfo(ctx, "product updated", slog.String("product.id", id), slog.Int("stock", result.Stock))
	return result, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	if err := s.inner.DeleteProduct(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete product", slog.String("product.id", id))
	}
	s.logInfo(ctx, "product deleted", slog.String("product.id", id))
	return nil
}

func (s *Service) FindProduct(ctx context.Context, id string) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.FindProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	result, err := s.inner.FindProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.String("product.id", id))
	}
	return result, nil
}

func (s *Service) ListProducts(ctx context.Context, filter catalogports.ListFilter) (catalogports.Page, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts",
		trace.WithAttributes(attribute.String("filter.category", string(filter.Category)), attribute.String("filter.sort", string(filter.Sort))))
	defer span.End()

	page, err := s.inner.ListProducts(ctx, filter)
	if err != nil {
		return page, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("result.total", page.Total))
	return page, nil
}

func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.FeaturedProducts")
	defer span.End()

	result, err := s.inner.FeaturedProducts(ctx, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list featured products")
	}
	return result, nil
}

func (s *Service) RelatedProducts(ctx context.Context, id string, limit int) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.RelatedProducts",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	result, err := s.inner.RelatedProducts(ctx, id, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list related products", slog.String("product.id", id))
	}
	return result, nil
}

func (s *Service) DecrementStock(ctx context.Context, id, size string, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DecrementStock",
		trace.WithAttributes(attribute.String("product.id", id), attribute.String("product.size", size), attribute.Int("quantity", quantity)))
	defer span.End()

	if err := s.inner.DecrementStock(ctx, id, size, quantity); err != nil {
		s.metrics.recordStock(ctx, "rejected")
		return s.handleError(ctx, span, err, "failed to decrement stock", slog.String("product.id", id), slog.String("size", size))
	}
	s.metrics.recordStock(ctx, "decremented")
	return nil
}

func (s *Service) Restock(ctx context.Context, id, size string, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Restock",
		trace.WithAttributes(attribute.String("product.id", id), attribute.Int("quantity", quantity)))
	defer span.End()

	if err := s.inner.Restock(ctx, id, size, quantity); err != nil {
		return s.handleError(ctx, span, err, "failed to restock product", slog.String("product.id", id))
	}
	s.metrics.recordStock(ctx, "restocked")
	s.logInfo(ctx, "stock released", slog.String("product.id", id), slog.String("size", size), slog.Int("quantity", quantity))
	return nil
}

func (s *Service) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateRating", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	if err := s.inner.UpdateRating(ctx, id, average, count); err != nil {
		return s.handleError(ctx, span, err, "failed to update rating", slog.String("product.id", id))
	}
	return nil
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
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	stockOps metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	stockOps, _ := m.Int64Counter("catalog.service.stock_operations", metric.WithDescription("Stock mutations by outcome"))
	return serviceMetrics{stockOps: stockOps}
}

func (m serviceMetrics) recordStock(ctx context.Context, outcome string) {
	if m.stockOps != nil {
		m.stockOps.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

var _ catalogports.Service = (*Service)(nil)
