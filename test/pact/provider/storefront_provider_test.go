//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/Apurer/storefront-api/test/pact"

	storefrontserver "github.com/Apurer/storefront-api/go"
	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/storefront-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/storefront-api/internal/domains/orders/application"
	"github.com/Apurer/storefront-api/internal/domains/payments/gateway"
	reviewsmemory "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/memory"
	reviewsapp "github.com/Apurer/storefront-api/internal/domains/reviews/application"
	usermemory "github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	wishlistmemory "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/memory"
	wishlistapp "github.com/Apurer/storefront-api/internal/domains/wishlist/application"
	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStorefrontProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetCatalog(t)
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetCatalog(t)
			if setup {
				app.seedProduct(t, pacttest.ExistingProductID)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetCatalog(t)
			return nil, nil
		},
		pacttest.StatePaymentsEnabled: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.resetCatalog(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	catalog *catalogmemory.Repository
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	gw, err := gateway.New(gateway.Config{MerchantID: pacttest.MerchantID, MerchantSecret: pacttest.MerchantSecret})
	require.NoError(t, err)

	catalogRepo := catalogmemory.NewRepository()
	catalog := catalogobs.New(catalogapp.NewService(catalogRepo))
	orders := ordersobs.New(ordersapp.NewService(ordersmemory.NewRepository(), catalog, ordersapp.WithGateway(gw)))
	users := userapp.NewService(usermemory.NewRepository(), usermemory.NewSessionStore())
	metrics := platformobservability.NewPrometheus("pact")

	handlers := storefrontserver.ApiHandleFunctions{
		Authenticator: users,
		AuthAPI:       storefrontserver.NewAuthAPI(users),
		ProductAPI:    storefrontserver.NewProductAPI(catalog),
		OrderAPI:      storefrontserver.NewOrderAPI(orders),
		PaymentAPI:    storefrontserver.NewPaymentAPI(orders, gw, metrics),
		ReviewAPI:     storefrontserver.NewReviewAPI(reviewsapp.NewService(reviewsmemory.NewRepository(), catalog, orders)),
		WishlistAPI:   storefrontserver.NewWishlistAPI(wishlistapp.NewService(wishlistmemory.NewRepository(), catalog)),
		SystemAPI:     storefrontserver.NewSystemAPI(metrics.Handler()),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = storefrontserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		catalog: catalogRepo,
		server:  server,
	}
}

func (a *contractProviderApp) resetCatalog(t testing.TB) {
	t.Helper()
	page, err := a.catalog.List(context.Background(), catalogports.ListFilter{IncludeInactive: true})
	require.NoError(t, err)
	for _, product := range page.Products {
		_ = a.catalog.Delete(context.Background(), product.ID)
	}
}

func (a *contractProviderApp) seedProduct(t testing.TB, id string) {
	t.Helper()
	product := &catalogdomain.Product{
		ID:          id,
		Name:        "Pact Linen Tee",
		Description: "Breathable linen tee",
		Price:       decimal.RequireFromString("45.00"),
		ImageURL:    "https://example.pact/products/tee.png",
		Category:    catalogdomain.CategoryMen,
		Stock:       12,
		IsActive:    true,
	}
	product.Normalize()
	require.NoError(t, product.Validate())
	_, err := a.catalog.Save(context.Background(), product)
	require.NoError(t, err)
}
