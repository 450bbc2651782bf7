package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatedesk/internal/middleware"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

// CallerKey is the context key for the resolved caller.
const CallerKey = "caller"

// ResolveCaller turns the authenticated user into a CallerContext once per
// request. It must run after middleware.Authenticate. A request sent with
// "Cache-Control: no-cache" drops the cached caller first, so a role change
// is visible without waiting for the cache TTL.
func ResolveCaller(resolver services.CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := middleware.GetUserID(c)

		if userID != "" && wantsFreshCaller(c) {
			resolver.Invalidate(ctx, userID)
		}

		caller, err := resolver.Resolve(ctx, userID)
		if err != nil {
			respondError(c, err, "Failed to resolve caller")
			c.Abort()
			return
		}

		c.Set(CallerKey, caller)
		if log := middleware.GetLogger(c); log != nil {
			c.Set(middleware.LoggerKey, log.WithCaller(caller.UserID, caller.OrganizationID, string(caller.Role)))
		}
		c.Next()
	}
}

func wantsFreshCaller(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Cache-Control")), "no-cache")
}

// GetCaller returns the caller set by ResolveCaller, or nil.
func GetCaller(c *gin.Context) *services.CallerContext {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(*services.CallerContext); ok {
			return caller
		}
	}
	return nil
}

// MeResponse is the body of GET /api/v1/me.
type MeResponse struct {
	Caller *services.CallerContext `json:"caller"`
}

// Me handles GET /api/v1/me.
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, MeResponse{Caller: GetCaller(c)})
}
