package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

// getUserIDFromContext reads the authenticated user id set by the JWT
// middleware. A missing id means the route was wired outside the auth group.
func getUserIDFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}
