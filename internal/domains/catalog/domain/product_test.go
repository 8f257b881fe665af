package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newShirt() *Product {
	p := &Product{
		Name:     "Linen Shirt",
		Price:    decimal.RequireFromString("45.00"),
		Category: CategoryMen,
		ImageURL: "https://img.example/shirt.png",
		Sizes:    []SizeStock{{Size: "m", Stock: 2}, {Size: "L", Stock: 1}},
		IsActive: true,
	}
	p.Normalize()
	return p
}

func TestNormalizeRecomputesAggregateStock(t *testing.T) {
	p := newShirt()
	require.Equal(t, 3, p.Stock)
	require.Equal(t, "M", p.Sizes[0].Size)
	require.NoError(t, p.Validate())

	p.Stock = 10
	require.ErrorIs(t, p.Validate(), ErrStockMismatch)
}

func TestEffectivePriceAppliesSale(t *testing.T) {
	p := newShirt()
	require.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("45.00")))

	p.OnSale = true
	p.SalePercentage = 20
	require.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("36.00")))
}

func TestDecrementIsAllOrNothing(t *testing.T) {
	p := newShirt()

	require.NoError(t, p.Decrement("M", 2))
	require.Equal(t, 1, p.Stock)
	require.Equal(t, 0, p.Sizes[0].Stock)

	require.ErrorIs(t, p.Decrement("M", 1), ErrInsufficientStock)
	require.Equal(t, 1, p.Stock)

	require.ErrorIs(t, p.Decrement("XS", 1), ErrUnknownSize)
	require.ErrorIs(t, p.Decrement("", 1), ErrSizeRequired)
	require.ErrorIs(t, p.Decrement("L", 0), ErrInvalidQuantity)
	require.Equal(t, 1, p.Sizes[1].Stock)
}

func TestRestockReturnsUnits(t *testing.T) {
	p := newShirt()
	require.NoError(t, p.Decrement("L", 1))
	require.NoError(t, p.Restock("l", 1))
	require.Equal(t, 3, p.Stock)
	require.Equal(t, 1, p.Sizes[1].Stock)
}

func TestApplyRatingZeroesWhenEmpty(t *testing.T) {
	p := newShirt()
	require.NoError(t, p.ApplyRating(4.5, 2))
	require.Equal(t, 4.5, p.AverageRating)

	require.NoError(t, p.ApplyRating(3, 0))
	require.Zero(t, p.AverageRating)
	require.Zero(t, p.NumReviews)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	p := newShirt()
	clone := p.Clone()
	clone.Sizes[0].Stock = 99
	require.Equal(t, 2, p.Sizes[0].Stock)
}
