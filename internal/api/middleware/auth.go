package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/pkg/jwt"
	"github.com/vEnhance/atheweb/pkg/redis"
	"github.com/vEnhance/atheweb/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token。
// rdb 非 nil 时检查 jti 黑名单；Redis 出错时降级放行
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "invalid authorization header")
			c.Abort()
			return
		}

		claims, ok := verifyAccessToken(c, jwtMgr, rdb, parts[1])
		if !ok {
			c.Abort()
			return
		}

		injectClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件
// 带合法 Token 时注入身份，否则按匿名放行；供目录、博客详情等
// 匿名可读、登录后信息更全的路由使用
func OptionalAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil || claims.TokenType != "access" {
			c.Next()
			return
		}
		if rdb != nil {
			if blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blacklisted {
				c.Next()
				return
			}
		}

		injectClaims(c, claims)
		c.Next()
	}
}

// QueryTokenAuth 查询参数认证中间件
// 日历订阅等无法携带请求头的客户端通过 ?token=<access token> 认证
func QueryTokenAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			response.Unauthorized(c, 10002, "missing token")
			c.Abort()
			return
		}

		claims, ok := verifyAccessToken(c, jwtMgr, rdb, token)
		if !ok {
			c.Abort()
			return
		}

		injectClaims(c, claims)
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "permission denied")
		c.Abort()
	}
}

func verifyAccessToken(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client, token string) (*jwt.Claims, bool) {
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, 10002, "token is invalid or expired")
		return nil, false
	}

	if claims.TokenType != "access" {
		response.Unauthorized(c, 10002, "invalid token type")
		return nil, false
	}

	if rdb != nil {
		// Redis 出错时降级放行
		blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err == nil && blacklisted {
			response.Unauthorized(c, 10002, "token has been revoked")
			return nil, false
		}
	}

	return claims, true
}

func injectClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("claims", claims)
}
