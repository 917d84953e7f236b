package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/neighborwang/roastery/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// BlockSeconds 超限后封禁时长，0 表示窗口结束即恢复
	BlockSeconds int
	// Proxy 为 true 时以 {success:false,error} 形式返回
	Proxy bool
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[2])
if block > 0 and current == tonumber(ARGV[3]) + 1 then
	redis.call("EXPIRE", KEYS[1], block)
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds, rule.BlockSeconds, rule.MaxRequests).Result()
		if err != nil {
			abortRateLimit(c, rule, http.StatusInternalServerError, response.CodeInternal, "限流服务暂不可用")
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			abortRateLimit(c, rule, http.StatusInternalServerError, response.CodeInternal, "限流服务暂不可用")
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			abortRateLimit(c, rule, http.StatusInternalServerError, response.CodeInternal, "限流服务暂不可用")
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
			abortRateLimit(c, rule, http.StatusTooManyRequests, response.CodeTooManyRequests, fmt.Sprintf("请求过于频繁，请 %d 秒后再试", waitSeconds))
			return
		}

		c.Next()
	}
}

func abortRateLimit(c *gin.Context, rule RateLimitRule, httpStatus, code int, msg string) {
	if rule.Proxy {
		response.ProxyError(c, httpStatus, msg)
	} else {
		response.Error(c, code, msg)
	}
	c.Abort()
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyBySession 使用购物会话 + IP 作为限流 key
func KeyBySession(c *gin.Context) string {
	sessionID := getSessionID(c)
	if sessionID == "" {
		return c.ClientIP()
	}
	return fmt.Sprintf("%s|%s", sessionID, c.ClientIP())
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
