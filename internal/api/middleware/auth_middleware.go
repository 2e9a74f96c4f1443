package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/auth"
)

// UserIDKey 是认证后写入 gin.Context 的用户 ID 键。
const UserIDKey = "userID"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
}

// AuthMiddleware 校验访问令牌并将 userID 注入上下文。
// 同时接受 "Bearer <token>" 与裸 token 两种 Authorization 写法。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := tokenFromHeader(c.GetHeader("Authorization"))
		if rawToken == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil {
			LoggerFromContext(c).Info("reject access token", "error", err)
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

func tokenFromHeader(header string) string {
	parts := strings.Fields(header)
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
		return parts[1]
	default:
		return ""
	}
}
