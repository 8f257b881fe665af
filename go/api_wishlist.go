package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	wishlisthttpmapper "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/http/mapper"
	wishlistports "github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

// WishlistAPI serves the caller's saved products.
type WishlistAPI struct {
	service wishlistports.Service
}

func NewWishlistAPI(service wishlistports.Service) WishlistAPI {
	return WishlistAPI{service: service}
}

// Get /api/wishlist
func (api *WishlistAPI) GetWishlist(c *gin.Context) {
	view, err := api.service.Get(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlisthttpmapper.FromView(view))
}

// Post /api/wishlist
func (api *WishlistAPI) AddItem(c *gin.Context) {
	var payload wishlisthttpmapper.AddItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := api.service.Add(c.Request.Context(), currentActor(c).UserID, payload.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlisthttpmapper.FromView(view))
}

// Delete /api/wishlist/:productId
func (api *WishlistAPI) RemoveItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	view, err := api.service.Remove(c.Request.Context(), currentActor(c).UserID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlisthttpmapper.FromView(view))
}

// Delete /api/wishlist
func (api *WishlistAPI) Clear(c *gin.Context) {
	view, err := api.service.Clear(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlisthttpmapper.FromView(view))
}
