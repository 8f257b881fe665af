package errors

import (
	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Responder provides methods to send Problem Details responses.
type Responder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI string
}

// NewResponder creates a new problem responder with optional base URI.
func NewResponder(baseURI string) *Responder {
	return &Responder{BaseURI: baseURI}
}

// DefaultResponder uses relative URIs for problem types.
var DefaultResponder = NewResponder("")

// Respond sends a ProblemDetail response with proper content type. The
// request path becomes the instance when none is set.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError records err on the gin context for access logging and
// responds with the problem its fault kind maps to.
func (r *Responder) RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	r.Respond(c, FromError(err))
}

// RespondBindError answers a request whose body or parameters could not be decoded.
func (r *Responder) RespondBindError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	r.Respond(c, FromBindError(err))
}

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, problem ProblemDetail) {
	DefaultResponder.Respond(c, problem)
}

// RespondError is a convenience function using the default responder.
func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}

// RespondBindError is a convenience function using the default responder.
func RespondBindError(c *gin.Context, err error) {
	DefaultResponder.RespondBindError(c, err)
}
