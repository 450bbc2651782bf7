package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/estatedesk/internal/errors"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

func init() {
	// Report validation failures by JSON/form field name.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// respondError maps a service error onto the HTTP error envelope.
func respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrAuthenticationMissing):
		apierrors.Unauthorized(c, "Authentication required")
	case errors.Is(err, services.ErrAuthorizationDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrRecordNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrUpstreamService):
		apierrors.BadGateway(c, message, err)
	default:
		apierrors.InternalServerError(c, message, err)
	}
}

// bindError reports a request binding failure.
func bindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		apierrors.PayloadTooLarge(c, maxBytes.Limit)
		return
	}
	apierrors.BadRequest(c, message, nil)
}

// requireCaller returns the resolved caller or writes a 401.
func requireCaller(c *gin.Context) (*services.CallerContext, bool) {
	caller := GetCaller(c)
	if caller == nil {
		apierrors.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return caller, true
}
