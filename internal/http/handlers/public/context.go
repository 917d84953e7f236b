package public

import (
	handlershared "github.com/neighborwang/roastery/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getSessionID(c *gin.Context) (string, bool) {
	return handlershared.SessionID(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondProxyError(c *gin.Context, httpStatus int, msg string, err error) {
	handlershared.RespondProxyError(c, httpStatus, msg, err)
}

func handlerLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}
