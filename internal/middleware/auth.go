package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatedesk/internal/auth"
)

const (
	// UserIDKey is the context key for the authenticated user id.
	UserIDKey = "user_id"
	// IdentityKey is the context key for the full authenticated identity.
	IdentityKey = "identity"
	// UserIDHeader is accepted by the development header authenticator.
	UserIDHeader = auth.UserIDHeader
)

// Authenticate rejects requests without a verified identity and stores the
// identity in the context for later stages.
func Authenticate(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Authentication failed", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			message := "Authentication required"
			if errors.Is(err, auth.ErrInvalidCredentials) {
				message = "Invalid or expired credentials"
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(IdentityKey, identity)
		if log := GetLogger(c); log != nil {
			c.Set(LoggerKey, log.With(map[string]interface{}{"user_id": identity.UserID}))
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" before authentication.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetIdentity returns the authenticated identity, or nil.
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if identity, ok := v.(*auth.Identity); ok {
			return identity
		}
	}
	return nil
}
