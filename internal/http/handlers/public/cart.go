package public

import (
	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 购物车行定位参数
type CartLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Variant   string `json:"variant" binding:"required"`
	Form      string `json:"form"`
	Grind     string `json:"grind"`
}

func (r CartLineRequest) identity() models.LineIdentity {
	return models.LineIdentity{
		ProductID: r.ProductID,
		Variant:   r.Variant,
		Form:      r.Form,
		Grind:     r.Grind,
	}
}

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Form      string `json:"form"`
	Grind     string `json:"grind"`
	Quantity  *int   `json:"quantity"`
}

// SetCartItemQuantityRequest 设置数量请求
type SetCartItemQuantityRequest struct {
	CartLineRequest
	Quantity int `json:"quantity"`
}

// AdjustCartItemRequest 增减数量请求
type AdjustCartItemRequest struct {
	CartLineRequest
	Delta int `json:"delta" binding:"required"`
}

// GetCart GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	summary, err := h.CartService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// AddCartItem POST /api/cart/items
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	summary, err := h.CartService.AddItem(c.Request.Context(), sessionID, service.AddCartItemInput{
		CartSelection: service.CartSelection{
			ProductID: req.ProductID,
			Variant:   req.Variant,
			Form:      req.Form,
			Grind:     req.Grind,
		},
		Quantity: quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// SetCartItemQuantity PUT /api/cart/items
// 数量小于 1 时保持不变
func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req SetCartItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	summary, err := h.CartService.SetQuantity(c.Request.Context(), sessionID, req.identity(), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// AdjustCartItem PATCH /api/cart/items
func (h *Handler) AdjustCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req AdjustCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	summary, err := h.CartService.AdjustQuantity(c.Request.Context(), sessionID, req.identity(), req.Delta)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// RemoveCartItem DELETE /api/cart/items
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		return
	}
	summary, err := h.CartService.RemoveItem(c.Request.Context(), sessionID, req.identity())
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}

// ClearCart DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return
	}
	summary, err := h.CartService.Clear(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}
