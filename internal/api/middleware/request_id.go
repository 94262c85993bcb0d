package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"

	// requestIDMaxLen 限制外部传入的 Request-ID 长度，防止日志注入
	requestIDMaxLen = 64
)

// RequestID 请求追踪 ID 中间件
// 沿用调用方传入的 X-Request-ID（便于跨服务追踪），缺失或超长时生成 UUID；
// 注入 gin.Context 并回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// RequestIDFrom 从 gin.Context 取出当前请求的追踪 ID，未设置时返回空串
func RequestIDFrom(c *gin.Context) string {
	if rid, ok := c.Get(requestIDKey); ok {
		if s, ok := rid.(string); ok {
			return s
		}
	}
	return ""
}
