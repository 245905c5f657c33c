package handlers

import (
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey is where the auth middleware stores the caller.
const PrincipalContextKey = "principal"

// getPrincipal reads the authenticated caller from the request context. A
// missing principal writes 401 and reports false.
func getPrincipal(c *gin.Context) (*service.Principal, bool) {
	value, ok := c.Get(PrincipalContextKey)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	principal, ok := value.(*service.Principal)
	if !ok || principal == nil {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	return principal, true
}
