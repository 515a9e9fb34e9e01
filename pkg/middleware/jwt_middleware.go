package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/StudentPortal/pkg/jwt"
	"seungpyo.lee/StudentPortal/pkg/util"
)

// AuthMiddleware returns a Gin middleware that validates JWT tokens and injects the principal into the context.
func AuthMiddleware(tokenManager jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := tokenManager.ValidateAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token expired"})
			case errors.Is(err, jwt.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token revoked"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			}
			return
		}
		util.SetPrincipal(c, jwt.ClaimsPrincipal{Claims: claims})
		c.Request.Header.Set("X-Student-Id", strconv.FormatUint(uint64(claims.StudentID), 10))
		c.Request.Header.Set("X-Username", claims.Username)
		c.Next()
	}
}
