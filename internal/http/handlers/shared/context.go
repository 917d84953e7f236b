package shared

import (
	"strings"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SessionID 读取会话中间件写入的购物会话 ID，缺失时直接写错误响应。
func SessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeySessionID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "购物会话不存在", nil)
		return "", false
	}
	id, ok := value.(string)
	if !ok || strings.TrimSpace(id) == "" {
		RespondError(c, response.CodeInternal, "购物会话无效", nil)
		return "", false
	}
	return id, true
}
