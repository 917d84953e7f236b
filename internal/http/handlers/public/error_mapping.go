package public

import (
	"errors"
	"net/http"

	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/service"
	"github.com/neighborwang/roastery/internal/storemap"
	"github.com/neighborwang/roastery/internal/upstream"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "商品不存在"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "数量需介于 1 到 99"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "商品不存在"},
	{target: service.ErrProductOptionAbsent, code: response.CodeBadRequest, msg: "商品规格不存在"},
	{target: service.ErrGrindInvalid, code: response.CodeBadRequest, msg: "研磨度无效"},
	{target: service.ErrCartLineNotFound, code: response.CodeNotFound, msg: "购物车中没有该商品"},
	{target: models.ErrPackagingKindInvalid, code: response.CodeBadRequest, msg: "包装规格无效"},
	{target: models.ErrPackagingFormInvalid, code: response.CodeBadRequest, msg: "包装规格无效"},
	{target: models.ErrPackagingGrindMisuse, code: response.CodeBadRequest, msg: "研磨度仅适用于咖啡粉"},
}

var checkoutValidationErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "购物车是空的"},
	{target: service.ErrBuyerNameRequired, code: response.CodeBadRequest, msg: "请填写收件人姓名"},
	{target: service.ErrBuyerPhoneInvalid, code: response.CodeBadRequest, msg: "手机号码格式错误 (需为 09 开头共 10 码)"},
	{target: service.ErrStoreRequired, code: response.CodeBadRequest, msg: "请选择取货门市"},
}

var checkoutPickerErrorRules = []mappedHandlerError{
	{target: storemap.ErrCallbackURLMissing, code: response.CodeInternal, msg: "门市地图回调地址未配置"},
}

var trackingErrorRules = []mappedHandlerError{
	{target: service.ErrBuyerPhoneInvalid, code: response.CodeBadRequest, msg: "手机号码格式错误 (需为 09 开头共 10 码)"},
	{target: upstream.ErrEndpointMissing, code: response.CodeInternal, msg: "订单系统未配置"},
	{target: upstream.ErrMarkupResponse, code: response.CodeInternal, msg: "订单系统连线错误"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "购物车操作失败")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(checkoutValidationErrorRules, checkoutPickerErrorRules), response.CodeInternal, "结帐处理失败")
}

func respondTrackingError(c *gin.Context, err error) {
	respondWithMappedError(c, err, trackingErrorRules, response.CodeBadGateway, "订单查询失败")
}

// proxyErrorStatus 代理边界错误码：本地校验 400，其余 500
func proxyErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrProxyActionInvalid),
		errors.Is(err, service.ErrProxyBodyInvalid),
		errors.Is(err, service.ErrBuyerPhoneInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondProxyFailure(c *gin.Context, err error) {
	respondProxyError(c, proxyErrorStatus(err), err.Error(), err)
}
