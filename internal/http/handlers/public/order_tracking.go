package public

import (
	"github.com/neighborwang/roastery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// TrackOrders GET /api/orders/track?phone=
func (h *Handler) TrackOrders(c *gin.Context) {
	result, err := h.OrderTrackingService.Track(c.Request.Context(), c.Query("phone"))
	if err != nil {
		respondTrackingError(c, err)
		return
	}
	response.Success(c, result)
}
