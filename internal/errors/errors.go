// Package errors writes the API's JSON error envelope.
package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/estatedesk/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound        = "NOT_FOUND"
	ErrBadRequest      = "BAD_REQUEST"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrValidation      = "VALIDATION_ERROR"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrForbidden       = "FORBIDDEN"
	ErrUpstream        = "UPSTREAM_ERROR"
	ErrPayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs at warn level and writes the envelope.
func respond(c *gin.Context, status int, code, logMsg, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		log.Warn(logMsg, fields)
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, "Resource not found", message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, "Bad request", message, details)
}

// Unauthorized returns a 401 for requests without a usable identity.
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrUnauthorized, "Unauthorized", message, nil)
}

// Forbidden returns a 403 for authenticated callers acting outside their role.
func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrForbidden, "Forbidden", message, nil)
}

// PayloadTooLarge returns a 413 with the accepted limit in details.
func PayloadTooLarge(c *gin.Context, maxBytes int64) {
	respond(c, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge, "Payload too large",
		"Upload exceeds the size limit", map[string]interface{}{"max_bytes": maxBytes})
}

// BadGateway returns a 502 when a dependency (database, storage) failed.
// The underlying error is logged, never sent to the client.
func BadGateway(c *gin.Context, message string, err error) {
	fail(c, http.StatusBadGateway, ErrUpstream, "Upstream failure", message, err)
}

// InternalServerError returns a 500 for failures the caller cannot act on.
// The underlying error is logged, never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	fail(c, http.StatusInternalServerError, ErrInternalServer, "Internal server error", message, err)
}

// fail logs err at error level and writes an envelope without details.
func fail(c *gin.Context, status int, code, logMsg, message string, err error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		log.Error(logMsg, err, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation error",
		"Validation failed for one or more fields", details)
}

// fieldMessages maps validator tags to messages; %s is the tag parameter.
var fieldMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"min":      "Value is too short or small (minimum: %s)",
	"max":      "Value is too long or large (maximum: %s)",
	"len":      "Must have length of %s",
	"gt":       "Must be greater than %s",
	"gte":      "Must be greater than or equal to %s",
	"gtefield": "Must not be before %s",
	"lt":       "Must be less than %s",
	"lte":      "Must be less than or equal to %s",
	"oneof":    "Must be one of: %s",
	"url":      "Must be a valid URL",
	"uuid":     "Must be a valid UUID",
	"dive":     "Contains an invalid entry",
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	msg, ok := fieldMessages[err.Tag()]
	if !ok {
		return "Validation failed for tag: " + err.Tag()
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, err.Param())
	}
	return msg
}
