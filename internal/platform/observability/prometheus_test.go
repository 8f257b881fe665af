package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewPrometheus("storefront")

	router := gin.New()
	router.Use(metrics.Middleware())
	router.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p-1", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	metrics.ObserveGatewayNotification("applied")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/api/products/:id", "GET", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("applied")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_payments_gateway_notifications_total"))
}
