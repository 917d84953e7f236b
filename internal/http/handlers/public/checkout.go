package public

import (
	"errors"
	"net/http"

	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCheckout GET /checkout 恢复草稿并合并门市回传参数
func (h *Handler) GetCheckout(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	view, err := h.CheckoutService.Open(c.Request.Context(), sessionID, c.Request.URL.Query())
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	if view.State == service.CheckoutStateCartEmpty {
		c.Redirect(http.StatusSeeOther, view.RedirectURL)
		return
	}
	response.Success(c, view)
}

// SaveCheckoutDraft PUT /checkout/draft
func (h *Handler) SaveCheckoutDraft(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var draft models.CheckoutDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	if err := h.CheckoutService.SaveDraft(c.Request.Context(), sessionID, draft); err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, draft)
}

// OpenStorePicker POST /checkout/store-picker 保存草稿后跳转门市地图，空购物车跳回 /cart
func (h *Handler) OpenStorePicker(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var draft models.CheckoutDraft
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&draft); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数错误", nil)
			return
		}
	}
	view, err := h.CheckoutService.BeginStoreSelection(c.Request.Context(), sessionID, draft)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	handlerLog(c).Debugw("checkout_store_picker_opened", "session_id", sessionID, "state", view.State)
	c.Redirect(http.StatusSeeOther, view.RedirectURL)
}

// SubmitCheckout POST /checkout/submit
func (h *Handler) SubmitCheckout(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var draft models.CheckoutDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	result, err := h.CheckoutService.Submit(c.Request.Context(), sessionID, draft)
	if err != nil {
		if errors.Is(err, service.ErrOrderSubmitFailed) {
			// 草稿已保存，前端可直接重试
			response.ErrorWithData(c, response.CodeBadGateway, result.Error, gin.H{"state": result.State})
			return
		}
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}
