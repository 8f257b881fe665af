/*
 * Storefront API
 *
 * Catalog, checkout, payment gateway callbacks, reviews and wishlists.
 */

package storefrontserver

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// Access is the authorization a route requires.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access selects the middleware placed in front of HandlerFunc.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Middleware the
// engine should apply to every route must be registered before calling it.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	configureValidator()
	requireAuth := RequireAuth(handleFunctions.Authenticator)
	requireAdmin := RequireAdmin()
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		var chain []gin.HandlerFunc
		switch route.Access {
		case Authenticated:
			chain = append(chain, requireAuth)
		case AdminOnly:
			chain = append(chain, requireAuth, requireAdmin)
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

var validatorOnce sync.Once

// configureValidator makes binding errors name fields as they appear in JSON.
// gin's validator is process-wide, so this runs once.
func configureValidator() {
	validatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			apierrors.UseJSONFieldNames(v)
		}
	})
}

// DefaultHandleFunc is the default handler for routes without one.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the API handlers and the token authenticator.
type ApiHandleFunctions struct {
	Authenticator Authenticator

	// Routes for the AuthAPI part of the API
	AuthAPI AuthAPI
	// Routes for the ProductAPI part of the API
	ProductAPI ProductAPI
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the PaymentAPI part of the API
	PaymentAPI PaymentAPI
	// Routes for the ReviewAPI part of the API
	ReviewAPI ReviewAPI
	// Routes for the WishlistAPI part of the API
	WishlistAPI WishlistAPI
	// Routes for the SystemAPI part of the API
	SystemAPI SystemAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/api/auth/register", Public, handleFunctions.AuthAPI.Register},
		{"Login", http.MethodPost, "/api/auth/login", Public, handleFunctions.AuthAPI.Login},
		{"Logout", http.MethodPost, "/api/auth/logout", Authenticated, handleFunctions.AuthAPI.Logout},
		{"GetProfile", http.MethodGet, "/api/auth/profile", Authenticated, handleFunctions.AuthAPI.GetProfile},
		{"UpdateProfile", http.MethodPut, "/api/auth/profile", Authenticated, handleFunctions.AuthAPI.UpdateProfile},
		{"ChangePassword", http.MethodPut, "/api/auth/change-password", Authenticated, handleFunctions.AuthAPI.ChangePassword},
		{"ForgotPassword", http.MethodPost, "/api/auth/forgot-password", Public, handleFunctions.AuthAPI.ForgotPassword},
		{"ResetPassword", http.MethodPost, "/api/auth/reset-password/:token", Public, handleFunctions.AuthAPI.ResetPassword},
		{"AddAddress", http.MethodPost, "/api/auth/address", Authenticated, handleFunctions.AuthAPI.AddAddress},
		{"UpdateAddress", http.MethodPut, "/api/auth/address/:addressId", Authenticated, handleFunctions.AuthAPI.UpdateAddress},
		{"DeleteAddress", http.MethodDelete, "/api/auth/address/:addressId", Authenticated, handleFunctions.AuthAPI.DeleteAddress},

		{"ListProducts", http.MethodGet, "/api/products", Public, handleFunctions.ProductAPI.ListProducts},
		{"FeaturedProducts", http.MethodGet, "/api/products/featured", Public, handleFunctions.ProductAPI.FeaturedProducts},
		{"GetProduct", http.MethodGet, "/api/products/:id", Public, handleFunctions.ProductAPI.GetProduct},
		{"RelatedProducts", http.MethodGet, "/api/products/:id/related", Public, handleFunctions.ProductAPI.RelatedProducts},
		{"CreateProduct", http.MethodPost, "/api/products", AdminOnly, handleFunctions.ProductAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/api/products/:id", AdminOnly, handleFunctions.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/api/products/:id", AdminOnly, handleFunctions.ProductAPI.DeleteProduct},

		{"CreateOrder", http.MethodPost, "/api/orders", Authenticated, handleFunctions.OrderAPI.CreateOrder},
		{"ListUserOrders", http.MethodGet, "/api/orders/user", Authenticated, handleFunctions.OrderAPI.ListUserOrders},
		{"GetOrder", http.MethodGet, "/api/orders/:id", Authenticated, handleFunctions.OrderAPI.GetOrder},
		{"ListOrders", http.MethodGet, "/api/orders", AdminOnly, handleFunctions.OrderAPI.ListOrders},
		{"UpdateOrderStatus", http.MethodPut, "/api/orders/:id/status", AdminOnly, handleFunctions.OrderAPI.UpdateOrderStatus},
		{"UpdatePaymentStatus", http.MethodPut, "/api/orders/:id/payment", AdminOnly, handleFunctions.OrderAPI.UpdatePaymentStatus},

		{"PaymentConfig", http.MethodGet, "/api/payment/config", Public, handleFunctions.PaymentAPI.Config},
		{"CreatePayment", http.MethodPost, "/api/payment/create", Authenticated, handleFunctions.PaymentAPI.CreatePayment},
		{"PayHereNotify", http.MethodPost, "/api/payment/payhere/notify", Public, handleFunctions.PaymentAPI.Notify},

		{"CreateReview", http.MethodPost, "/api/reviews", Authenticated, handleFunctions.ReviewAPI.CreateReview},
		{"ListProductReviews", http.MethodGet, "/api/reviews/product/:productId", Public, handleFunctions.ReviewAPI.ListProductReviews},
		{"MarkReviewHelpful", http.MethodPut, "/api/reviews/:id/helpful", Authenticated, handleFunctions.ReviewAPI.MarkHelpful},
		{"DeleteReview", http.MethodDelete, "/api/reviews/:id", Authenticated, handleFunctions.ReviewAPI.DeleteReview},

		{"GetWishlist", http.MethodGet, "/api/wishlist", Authenticated, handleFunctions.WishlistAPI.GetWishlist},
		{"AddToWishlist", http.MethodPost, "/api/wishlist", Authenticated, handleFunctions.WishlistAPI.AddItem},
		{"ClearWishlist", http.MethodDelete, "/api/wishlist", Authenticated, handleFunctions.WishlistAPI.Clear},
		{"RemoveFromWishlist", http.MethodDelete, "/api/wishlist/:productId", Authenticated, handleFunctions.WishlistAPI.RemoveItem},

		{"Health", http.MethodGet, "/healthz", Public, handleFunctions.SystemAPI.Health},
		{"Metrics", http.MethodGet, "/metrics", Public, handleFunctions.SystemAPI.Metrics},
	}
}
