package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	reviewsmemory "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/memory"
	"github.com/Apurer/storefront-api/internal/domains/reviews/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

type purchases map[string]bool

func (p purchases) HasPurchased(_ context.Context, userID, productID string) (bool, error) {
	return p[userID+"/"+productID], nil
}

type failingCatalog struct {
	ports.Catalog
}

func (failingCatalog) UpdateRating(context.Context, string, float64, int) error {
	return errors.New("catalog unavailable")
}

// contextCatalog refuses rating writes on a cancelled context, as the
// postgres adapter does.
type contextCatalog struct {
	ports.Catalog
}

func (c contextCatalog) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Catalog.UpdateRating(ctx, id, average, count)
}

func actor(id string) identity.Actor {
	return identity.Actor{UserID: id, Name: "User " + id, Role: identity.RoleCustomer}
}

func newFixture(t *testing.T) (*Service, *catalogapp.Service) {
	t.Helper()
	catalog := catalogapp.NewService(catalogmemory.NewRepository(), catalogapp.WithIDGenerator(func() string { return "p-1" }))
	_, err := catalog.CreateProduct(context.Background(), &catalogdomain.Product{
		Name: "Linen shirt", Price: decimal.RequireFromString("30.00"), Category: catalogdomain.CategoryMen,
		Images: []string{"https://img.example/1.jpg"}, Stock: 5, IsActive: true,
	})
	require.NoError(t, err)

	var mu sync.Mutex
	n := 0
	svc := NewService(reviewsmemory.NewRepository(), catalog, purchases{"u-1/p-1": true}, WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("r-%d", n)
	}))
	return svc, catalog
}

func submit(t *testing.T, svc *Service, user string, rating int) string {
	t.Helper()
	review, err := svc.CreateReview(context.Background(), ports.CreateReviewInput{
		Actor: actor(user), ProductID: "p-1", Rating: rating, Title: "Nice", Comment: "Would buy again",
	})
	require.NoError(t, err)
	return review.ID
}

func TestCreateAndDelete_RecomputesAggregate(t *testing.T) {
	svc, catalog := newFixture(t)
	ctx := context.Background()

	submit(t, svc, "u-1", 5)
	three := submit(t, svc, "u-2", 3)
	submit(t, svc, "u-3", 4)

	product, err := catalog.FindProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, product.AverageRating)
	assert.Equal(t, 3, product.NumReviews)

	require.NoError(t, svc.DeleteReview(ctx, three, actor("u-2")))
	product, err = catalog.FindProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, product.AverageRating)
	assert.Equal(t, 2, product.NumReviews)
}

func TestCreateReview_VerifiedPurchaseAndDuplicates(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	first, err := svc.CreateReview(ctx, ports.CreateReviewInput{Actor: actor("u-1"), ProductID: "p-1", Rating: 5, Title: "Great", Comment: "Fits"})
	require.NoError(t, err)
	assert.True(t, first.VerifiedPurchase)
	assert.Equal(t, "User u-1", first.UserName)

	_, err = svc.CreateReview(ctx, ports.CreateReviewInput{Actor: actor("u-1"), ProductID: "p-1", Rating: 1, Title: "Again", Comment: "Again"})
	require.ErrorIs(t, err, fault.ErrConflict)

	other, err := svc.CreateReview(ctx, ports.CreateReviewInput{Actor: actor("u-2"), ProductID: "p-1", Rating: 4, Title: "Ok", Comment: "Fine"})
	require.NoError(t, err)
	assert.False(t, other.VerifiedPurchase)
}

func TestCreateReview_Rejections(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, ports.CreateReviewInput{Actor: actor("u-1"), ProductID: "missing", Rating: 5, Title: "t", Comment: "c"})
	require.ErrorIs(t, err, fault.ErrNotFound)

	_, err = svc.CreateReview(ctx, ports.CreateReviewInput{Actor: actor("u-1"), ProductID: "p-1", Rating: 0, Title: "t", Comment: "c"})
	require.ErrorIs(t, err, fault.ErrValidation)

	_, err = svc.CreateReview(ctx, ports.CreateReviewInput{ProductID: "p-1", Rating: 4, Title: "t", Comment: "c"})
	require.ErrorIs(t, err, fault.ErrUnauthorized)
}

func TestMarkHelpful(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	id := submit(t, svc, "u-1", 5)

	review, err := svc.MarkHelpful(ctx, id, actor("u-2"))
	require.NoError(t, err)
	assert.Equal(t, 1, review.HelpfulCount)

	_, err = svc.MarkHelpful(ctx, id, actor("u-2"))
	require.ErrorIs(t, err, fault.ErrConflict)

	_, err = svc.MarkHelpful(ctx, "missing", actor("u-2"))
	require.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDeleteReview_OwnerOrAdmin(t *testing.T) {
	svc, catalog := newFixture(t)
	ctx := context.Background()
	id := submit(t, svc, "u-1", 5)

	err := svc.DeleteReview(ctx, id, actor("u-2"))
	require.ErrorIs(t, err, fault.ErrForbidden)

	require.NoError(t, svc.DeleteReview(ctx, id, identity.Actor{UserID: "admin", Role: identity.RoleAdmin}))
	product, err := catalog.FindProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Zero(t, product.AverageRating)
	assert.Zero(t, product.NumReviews)

	require.ErrorIs(t, svc.DeleteReview(ctx, id, actor("u-1")), fault.ErrNotFound)
}

func TestCreateReview_AggregateFailureDoesNotFailWrite(t *testing.T) {
	_, catalog := newFixture(t)
	repo := reviewsmemory.NewRepository()
	svc := NewService(repo, failingCatalog{Catalog: catalog}, nil)

	review, err := svc.CreateReview(context.Background(), ports.CreateReviewInput{
		Actor: actor("u-1"), ProductID: "p-1", Rating: 5, Title: "t", Comment: "c",
	})
	require.NoError(t, err)
	stored, err := repo.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Rating)
}

func TestListProductReviews_NewestFirst(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()
	submit(t, svc, "u-1", 5)
	latest := submit(t, svc, "u-2", 4)

	reviews, err := svc.ListProductReviews(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, latest, reviews[0].ID)
}

func TestDeleteReview_RefreshesAggregateAfterClientCancels(t *testing.T) {
	_, catalog := newFixture(t)
	svc := NewService(reviewsmemory.NewRepository(), contextCatalog{Catalog: catalog}, nil)

	review, err := svc.CreateReview(context.Background(), ports.CreateReviewInput{
		Actor: actor("u-1"), ProductID: "p-1", Rating: 4, Title: "t", Comment: "c",
	})
	require.NoError(t, err)
	product, err := catalog.FindProduct(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, 1, product.NumReviews)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.DeleteReview(ctx, review.ID, actor("u-1")))

	product, err = catalog.FindProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Zero(t, product.NumReviews)
	assert.Zero(t, product.AverageRating)
}

func TestRefreshLock_StableForProduct(t *testing.T) {
	svc, _ := newFixture(t)
	assert.Same(t, svc.refreshLock("p-1"), svc.refreshLock("p-1"))
}
