package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	storefrontserver "github.com/Apurer/storefront-api/go"

	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"

	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/storefront-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/storefront-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/storefront-api/internal/domains/orders/application"
	orderports "github.com/Apurer/storefront-api/internal/domains/orders/ports"

	"github.com/Apurer/storefront-api/internal/domains/payments/gateway"

	reviewsmemory "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/memory"
	reviewsobs "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/observability"
	reviewspostgres "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/persistence/postgres"
	reviewsapp "github.com/Apurer/storefront-api/internal/domains/reviews/application"
	reviewports "github.com/Apurer/storefront-api/internal/domains/reviews/ports"

	usermemory "github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	usernotifications "github.com/Apurer/storefront-api/internal/domains/users/adapters/notifications"
	userobs "github.com/Apurer/storefront-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/storefront-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"

	wishlistmemory "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/memory"
	wishlistobs "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/observability"
	wishlistpostgres "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/persistence/postgres"
	wishlistapp "github.com/Apurer/storefront-api/internal/domains/wishlist/application"
	wishlistports "github.com/Apurer/storefront-api/internal/domains/wishlist/ports"

	"github.com/Apurer/storefront-api/internal/platform/mail"
	"github.com/Apurer/storefront-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

const serviceName = "storefront-api"

// Run boots the storefront HTTP API with observability, repositories, and
// workflows wired. It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.OpenOrFallback(ctx, cfg.Postgres, logger)
	defer cleanupDB()
	repos, err := buildRepositories(db, logger)
	if err != nil {
		return err
	}

	var gw *gateway.Gateway
	if cfg.PaymentsEnabled() {
		if gw, err = gateway.New(cfg.PayHere); err != nil {
			return fmt.Errorf("failed to configure payment gateway: %w", err)
		}
		logger.Info("online payments enabled", slog.String("mode", cfg.PayHere.Mode))
	} else {
		logger.Warn("PAYHERE_MERCHANT_ID/PAYHERE_MERCHANT_SECRET not set, online payments disabled")
	}

	mailSender := NewMailSender(cfg, logger)
	var notifier orderports.Notifier = ordersworkflows.NewInlineNotifier(mailSender, cfg.PayHere.Currency, 0, logger)
	if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, sending confirmations inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		notifier = ordersworkflows.NewTemporalNotifier(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	catalogService := catalogobs.New(
		catalogapp.NewService(repos.catalog, catalogapp.WithTimeout(cfg.DependencyTimeout)),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	orderOptions := []ordersapp.Option{
		ordersapp.WithNotifier(notifier),
		ordersapp.WithIdempotencyStore(repos.checkoutKeys),
		ordersapp.WithLogger(logger),
		ordersapp.WithTimeout(cfg.DependencyTimeout),
	}
	var gatewayConfig storefrontserver.GatewayConfig
	if gw != nil {
		orderOptions = append(orderOptions, ordersapp.WithGateway(gw))
		gatewayConfig = gw
	}
	orderService := ordersobs.New(
		ordersapp.NewService(repos.orders, catalogService, orderOptions...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	reviewService := reviewsobs.New(
		reviewsapp.NewService(repos.reviews, catalogService, orderService,
			reviewsapp.WithLogger(logger), reviewsapp.WithTimeout(cfg.DependencyTimeout)),
		reviewsobs.WithLogger(logger),
		reviewsobs.WithTracer(instruments.Tracer("internal.reviews.application")),
		reviewsobs.WithMeter(instruments.Meter("internal.reviews.application")),
	)
	wishlistService := wishlistobs.New(
		wishlistapp.NewService(repos.wishlist, catalogService, wishlistapp.WithTimeout(cfg.DependencyTimeout)),
		wishlistobs.WithLogger(logger),
		wishlistobs.WithTracer(instruments.Tracer("internal.wishlist.application")),
	)
	userService := userobs.New(
		userapp.NewService(repos.users, repos.sessions,
			userapp.WithSessionTTL(cfg.SessionTTL), userapp.WithTimeout(cfg.DependencyTimeout),
			userapp.WithResetMailer(usernotifications.NewResetMailer(mailSender, cfg.FrontendURL))),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	if cfg.AdminEmail != "" {
		if _, err := userService.EnsureAdmin(ctx, "Administrator", cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
	}
	if cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessions(ctx, repos.sessions, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	metrics := platformobservability.NewPrometheus("storefront")
	handlers := storefrontserver.ApiHandleFunctions{
		Authenticator: userService,
		AuthAPI:       storefrontserver.NewAuthAPI(userService),
		ProductAPI:    storefrontserver.NewProductAPI(catalogService),
		OrderAPI:      storefrontserver.NewOrderAPI(orderService),
		PaymentAPI:    storefrontserver.NewPaymentAPI(orderService, gatewayConfig, metrics),
		ReviewAPI:     storefrontserver.NewReviewAPI(reviewService),
		WishlistAPI:   storefrontserver.NewWishlistAPI(wishlistService),
		SystemAPI:     storefrontserver.NewSystemAPI(metrics.Handler()),
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(cfg.Telemetry.ServiceName), metrics.Middleware())
	router := storefrontserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Storefront API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Storefront API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Storefront API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

type repositories struct {
	catalog      catalogports.Repository
	orders       orderports.Repository
	checkoutKeys orderports.IdempotencyStore
	reviews      reviewports.Repository
	wishlist     wishlistports.Repository
	users        userports.Repository
	sessions     userports.SessionStore
}

// buildRepositories returns postgres adapters when db is available and
// in-memory adapters otherwise.
func buildRepositories(db *gorm.DB, logger *slog.Logger) (repositories, error) {
	if db == nil {
		logger.Warn("using in-memory repositories; data is lost on restart")
		return repositories{
			catalog:      catalogmemory.NewRepository(),
			orders:       ordersmemory.NewRepository(),
			checkoutKeys: ordersmemory.NewIdempotencyStore(),
			reviews:      reviewsmemory.NewRepository(),
			wishlist:     wishlistmemory.NewRepository(),
			users:        usermemory.NewRepository(),
			sessions:     usermemory.NewSessionStore(),
		}, nil
	}
	if err := migrations.Run(db); err != nil {
		return repositories{}, fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return repositories{
		catalog:      catalogpostgres.NewRepository(db),
		orders:       orderspostgres.NewRepository(db),
		checkoutKeys: orderspostgres.NewIdempotencyStore(db),
		reviews:      reviewspostgres.NewRepository(db),
		wishlist:     wishlistpostgres.NewRepository(db),
		users:        userpostgres.NewRepository(db),
		sessions:     userpostgres.NewSessionStore(db),
	}, nil
}

// NewMailSender returns an SMTP sender when configured and a logging sender otherwise.
func NewMailSender(cfg Config, logger *slog.Logger) mail.Sender {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP_HOST not set, order confirmations are logged instead of sent")
		return mail.LogSender{Logger: logger}
	}
	sender, err := mail.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Warn("invalid SMTP configuration, logging confirmations", slog.String("error", err.Error()))
		return mail.LogSender{Logger: logger}
	}
	return sender
}

func purgeSessions(ctx context.Context, sessions userports.SessionStore, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := sessions.PurgeExpired(ctx, now)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions purged", slog.Int64("removed", removed))
			}
		}
	}
}

// DialTemporal connects a traced Temporal client unless TEMPORAL_DISABLED is set.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
