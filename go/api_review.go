package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reviewhttpmapper "github.com/Apurer/storefront-api/internal/domains/reviews/adapters/http/mapper"
	reviewports "github.com/Apurer/storefront-api/internal/domains/reviews/ports"
)

// ReviewAPI wires HTTP transport with the review aggregator.
type ReviewAPI struct {
	service reviewports.Service
}

func NewReviewAPI(service reviewports.Service) ReviewAPI {
	return ReviewAPI{service: service}
}

// Post /api/reviews
// Review a product once per account
func (api *ReviewAPI) CreateReview(c *gin.Context) {
	var payload reviewhttpmapper.CreateReview
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	review, err := api.service.CreateReview(c.Request.Context(), reviewhttpmapper.ToCreateInput(currentActor(c), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reviewhttpmapper.FromDomainReview(review))
}

// Get /api/reviews/product/:productId
func (api *ReviewAPI) ListProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	reviews, err := api.service.ListProductReviews(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromDomainReviews(reviews))
}

// Put /api/reviews/:id/helpful
func (api *ReviewAPI) MarkHelpful(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	review, err := api.service.MarkHelpful(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromDomainReview(review))
}

// Delete /api/reviews/:id
// Authors and admins only
func (api *ReviewAPI) DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteReview(c.Request.Context(), id, currentActor(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review removed"})
}
