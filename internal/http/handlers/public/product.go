package public

import (
	"strings"

	"github.com/neighborwang/roastery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	response.Success(c, h.ProductService.List())
}

// GetProduct GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.Get(strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "商品读取失败")
		return
	}
	response.Success(c, product)
}
