package util

import (
	"github.com/gin-gonic/gin"
	"seungpyo.lee/StudentPortal/pkg/jwt"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated principal on the gin context.
func SetPrincipal(c *gin.Context, p jwt.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the principal stored by the auth middleware.
func GetPrincipal(c *gin.Context) (jwt.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(jwt.Principal)
	return p, ok
}
