package storefrontserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondBadRequest reports a malformed parameter or query value.
func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondBindError reports a JSON body that failed to decode or violated its binding rules.
func respondBindError(c *gin.Context, err error) {
	apierrors.RespondBindError(c, err)
}

// respondServiceError lets the fault kind carried by err pick the status.
func respondServiceError(c *gin.Context, err error) {
	apierrors.RespondError(c, err)
}

// parseIDParam binds a required simple-style path parameter.
func parseIDParam(c *gin.Context, name string) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err == nil && strings.TrimSpace(id) == "" {
		err = errors.New(name + " is required")
	}
	if err != nil {
		respondBadRequest(c, err)
		return "", false
	}
	return id, true
}

// bindQuery binds an optional form-style query parameter into dest.
func bindQuery(c *gin.Context, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), dest); err != nil {
		respondBadRequest(c, err)
		return false
	}
	return true
}
