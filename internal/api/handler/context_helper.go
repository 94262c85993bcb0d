package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vEnhance/atheweb/internal/service"
	"github.com/vEnhance/atheweb/pkg/jwt"
	"github.com/vEnhance/atheweb/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetCaller 从 Gin 上下文中提取调用者身份（user_id + role）。
// 未认证时写入 401 响应并返回 false。
func MustGetCaller(c *gin.Context) (*service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return nil, false
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return &service.Caller{UserID: userID, Role: roleStr}, true
}

// CallerFrom 提取调用者身份；未认证时返回 nil（匿名调用者）。
// 供可选认证路由使用，不写任何响应。
func CallerFrom(c *gin.Context) *service.Caller {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		return nil
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return &service.Caller{UserID: userID, Role: roleStr}
}

// MustGetClaims 从 Gin 上下文中提取完整 JWT 声明（登出黑名单需要 jti 与过期时间）。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}
