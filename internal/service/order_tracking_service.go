package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/upstream"
)

const defaultNoOrderMessage = "目前沒有進行中的訂單 (可能已結案或號碼有誤)"

// OrderFetcher 上游只读查询接口
type OrderFetcher interface {
	Fetch(ctx context.Context, action, phone string) (*upstream.Result, error)
}

// TrackedOrder 查单结果中的订单
type TrackedOrder struct {
	OrderID        string          `json:"orderId"`
	Status         string          `json:"status"`
	Date           string          `json:"date"`
	Total          json.RawMessage `json:"total,omitempty"`
	Items          json.RawMessage `json:"items,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	TrackingURL    string          `json:"trackingUrl,omitempty"`
	Shipped        bool            `json:"shipped"`
}

// TrackingResult 查单结果
type TrackingResult struct {
	Found   bool           `json:"found"`
	Orders  []TrackedOrder `json:"orders"`
	Message string         `json:"message,omitempty"`
}

// OrderTrackingService 订单查询服务
type OrderTrackingService struct {
	fetcher OrderFetcher
}

// NewOrderTrackingService 创建订单查询服务
func NewOrderTrackingService(fetcher OrderFetcher) *OrderTrackingService {
	return &OrderTrackingService{fetcher: fetcher}
}

// Track 按手机号查询订单
func (s *OrderTrackingService) Track(ctx context.Context, phone string) (TrackingResult, error) {
	phone = strings.TrimSpace(phone)
	if err := ValidatePhone(phone); err != nil {
		return TrackingResult{}, err
	}
	result, err := s.fetcher.Fetch(ctx, constants.UpstreamActionCheckOrder, phone)
	if err != nil {
		return TrackingResult{}, err
	}

	var decoded TrackingResult
	if err := json.Unmarshal(result.Raw, &decoded); err != nil {
		return TrackingResult{}, fmt.Errorf("%w: %v", upstream.ErrResponseInvalid, err)
	}
	if !decoded.Found || len(decoded.Orders) == 0 {
		msg := strings.TrimSpace(decoded.Message)
		if msg == "" {
			msg = defaultNoOrderMessage
		}
		return TrackingResult{Found: false, Orders: []TrackedOrder{}, Message: msg}, nil
	}
	for i := range decoded.Orders {
		order := &decoded.Orders[i]
		order.Shipped = strings.Contains(order.Status, "出貨") || strings.Contains(order.Status, "送達")
		if no := strings.TrimSpace(order.TrackingNumber); no != "" {
			order.TrackingURL = TrackingURL(no)
		}
	}
	return decoded, nil
}

// TrackingURL 7-11 物流查询地址
func TrackingURL(paymentNo string) string {
	query := url.Values{}
	query.Set("CRM_PaymentNo", paymentNo)
	query.Set("FLAG", "12")
	query.Set("FROM", "C2CPlatform")
	query.Set("returnuri", "https://myship.7-11.com.tw/seller/order/All")
	return constants.SevenElevenTrackingURL + "?" + query.Encode()
}
