package shared

import (
	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回统一错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondProxyError 返回代理边界的 {success:false,error} 响应。
func RespondProxyError(c *gin.Context, httpStatus int, msg string, err error) {
	appErr := response.WrapProxyError(httpStatus, msg, err)
	if err != nil {
		RequestLog(c).Warnw("proxy_error",
			"status", appErr.HTTPStatus,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.ProxyError(c, appErr.HTTPStatus, appErr.Message)
}
