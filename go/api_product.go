package storefrontserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cataloghttpmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

// ProductAPI wires HTTP transport with the catalog service.
type ProductAPI struct {
	service catalogports.Service
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// listParams are the optional query parameters of the product listing.
type listParams struct {
	Category *string
	Search   *string
	MinPrice *string
	MaxPrice *string
	OnSale   *bool
	Featured *bool
	Sort     *string
	Page     *int
	Limit    *int
}

// Get /api/products
// Filtered, sorted and paged catalog listing
func (api *ProductAPI) ListProducts(c *gin.Context) {
	var params listParams
	for name, dest := range map[string]any{
		"category": &params.Category,
		"search":   &params.Search,
		"minPrice": &params.MinPrice,
		"maxPrice": &params.MaxPrice,
		"onSale":   &params.OnSale,
		"featured": &params.Featured,
		"sort":     &params.Sort,
		"page":     &params.Page,
		"limit":    &params.Limit,
	} {
		if !bindQuery(c, name, dest) {
			return
		}
	}
	filter, err := params.toFilter()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	page, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromPage(page))
}

// Get /api/products/featured
// Newest featured products
func (api *ProductAPI) FeaturedProducts(c *gin.Context) {
	var limit *int
	if !bindQuery(c, "limit", &limit) {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	products, err := api.service.FeaturedProducts(c.Request.Context(), n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProducts(products))
}

// Get /api/products/:id
// Find product by ID
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.FindProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

// Get /api/products/:id/related
// Best rated active products from the same category
func (api *ProductAPI) RelatedProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var limit *int
	if !bindQuery(c, "limit", &limit) {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	products, err := api.service.RelatedProducts(c.Request.Context(), id, n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProducts(products))
}

// Post /api/products
// Add a product to the catalog
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload cataloghttpmapper.ProductInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	saved, err := api.service.CreateProduct(c.Request.Context(), cataloghttpmapper.ToDomainProduct(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainProduct(saved))
}

// Put /api/products/:id
// Replace the editable fields of a product
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload cataloghttpmapper.ProductInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), id, cataloghttpmapper.ToDomainProduct(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(updated))
}

// Delete /api/products/:id
// Remove a product
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product removed"})
}

func (p listParams) toFilter() (catalogports.ListFilter, error) {
	filter := catalogports.ListFilter{
		Category:     catalogdomain.Category(deref(p.Category)),
		Search:       deref(p.Search),
		OnSaleOnly:   p.OnSale != nil && *p.OnSale,
		FeaturedOnly: p.Featured != nil && *p.Featured,
		Sort:         catalogports.SortOrder(deref(p.Sort)),
	}
	if p.Page != nil {
		filter.Page = *p.Page
	}
	if p.Limit != nil {
		filter.Limit = *p.Limit
	}
	var err error
	if filter.MinPrice, err = parsePrice("minPrice", p.MinPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice("maxPrice", p.MaxPrice); err != nil {
		return filter, err
	}
	switch filter.Sort {
	case catalogports.SortDefault, catalogports.SortPriceLow, catalogports.SortPriceHigh,
		catalogports.SortRating, catalogports.SortNewest:
	default:
		return filter, fmt.Errorf("sort %q is not supported", filter.Sort)
	}
	return filter, nil
}

func parsePrice(name string, raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal: %w", name, err)
	}
	return &value, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
