package errors

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-api/internal/shared/fault"
)

func TestFromErrorMapsFaultKinds(t *testing.T) {
	cases := map[error]int{
		fault.ErrValidation:   http.StatusBadRequest,
		fault.ErrIntegrity:    http.StatusBadRequest,
		fault.ErrUnauthorized: http.StatusUnauthorized,
		fault.ErrForbidden:    http.StatusForbidden,
		fault.ErrNotFound:     http.StatusNotFound,
		fault.ErrConflict:     http.StatusConflict,
		fault.ErrDependency:   http.StatusServiceUnavailable,
	}
	for kind, status := range cases {
		err := fault.Wrap(kind, stderrors.New("cause"))
		require.Equal(t, status, FromError(err).Status, kind.Error())
	}
	require.Equal(t, http.StatusInternalServerError, FromError(stderrors.New("plain")).Status)
}

func TestFromErrorHidesDependencyCause(t *testing.T) {
	problem := FromError(fault.Dependency("orders.save", stderrors.New("dial tcp 10.0.0.7:5432")))
	require.NotContains(t, problem.Detail, "10.0.0.7")
}

func TestRespondErrorWritesProblemJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)

	RespondError(c, fault.Wrap(fault.ErrNotFound, stderrors.New("order not found")))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"instance":"/api/orders/42"`)
}

type signup struct {
	Email string `json:"email" binding:"required,email"`
	Items []line `json:"items" binding:"required,min=1,dive"`
}

type line struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=1"`
}

func TestFromBindErrorListsFieldsByJSONName(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	UseJSONFieldNames(v)

	err := v.Struct(signup{Email: "not-an-email", Items: []line{{Quantity: 0}}})
	problem := FromBindError(err)

	require.Equal(t, http.StatusBadRequest, problem.Status)
	require.Equal(t, TypeValidation, problem.Type)
	fields, ok := problem.Extensions["fields"].(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be a valid email address", fields["email"])
	require.Equal(t, "is required", fields["items[0].productId"])
	require.Equal(t, "must be at least 1", fields["items[0].quantity"])
}

func TestFromBindErrorTreatsMalformedBodyAsBadRequest(t *testing.T) {
	problem := FromBindError(stderrors.New("invalid character 'x' looking for beginning of value"))
	require.Equal(t, TypeBadRequest, problem.Type)
	require.Contains(t, problem.Detail, "invalid character")
}
