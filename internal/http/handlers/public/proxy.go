package public

import (
	"errors"
	"net/http"

	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/storemap"

	"github.com/gin-gonic/gin"
)

const storeCallbackMaxMemory = 1 << 20

// ProxyFetch GET /checkout-api 转发只读查询（菜单、查单）
func (h *Handler) ProxyFetch(c *gin.Context) {
	raw, err := h.ProxyService.Fetch(c.Request.Context(), c.Query("action"), c.Query("phone"))
	if err != nil {
		respondProxyFailure(c, err)
		return
	}
	response.ProxyRaw(c, raw)
}

// ProxySubmit POST /checkout-api 原样转发订单
func (h *Handler) ProxySubmit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondProxyError(c, http.StatusBadRequest, "请求体读取失败", err)
		return
	}
	raw, err := h.ProxyService.Forward(c.Request.Context(), body)
	if err != nil {
		respondProxyFailure(c, err)
		return
	}
	response.ProxyRaw(c, raw)
}

// StoreCallback POST /store-callback 门市地图回传，303 跳回结帐页
func (h *Handler) StoreCallback(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(storeCallbackMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "处理门市资料失败"})
		return
	}
	sel := storemap.ParseCallback(c.Request.PostForm)
	handlerLog(c).Infow("store_callback_received",
		"store_id", sel.StoreID,
		"store_name", sel.StoreName,
	)
	c.Redirect(http.StatusSeeOther, storemap.ReturnURL(sel))
}
