package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/cache"
	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/logger"
)

const productsCacheKey = "upstream:products"

// UpstreamGateway 上游脚本网关
type UpstreamGateway interface {
	OrderFetcher
	OrderSubmitter
}

// ProxyService 结帐代理服务（原样转发到上游脚本）
type ProxyService struct {
	gateway      UpstreamGateway
	productsTTL  time.Duration
	allowActions map[string]bool
}

// NewProxyService 创建代理服务，productsTTL<=0 时不缓存菜单
func NewProxyService(gateway UpstreamGateway, productsTTL time.Duration) *ProxyService {
	return &ProxyService{
		gateway:     gateway,
		productsTTL: productsTTL,
		allowActions: map[string]bool{
			constants.UpstreamActionGetProducts: true,
			constants.UpstreamActionCheckOrder:  true,
		},
	}
}

// Fetch 转发只读查询
func (s *ProxyService) Fetch(ctx context.Context, action, phone string) (json.RawMessage, error) {
	action = strings.TrimSpace(action)
	if !s.allowActions[action] {
		return nil, ErrProxyActionInvalid
	}
	phone = strings.TrimSpace(phone)
	if action == constants.UpstreamActionCheckOrder {
		if err := ValidatePhone(phone); err != nil {
			return nil, err
		}
	}

	cacheable := action == constants.UpstreamActionGetProducts && s.productsTTL > 0
	if cacheable {
		var cached json.RawMessage
		if hit, err := cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && hit && len(cached) > 0 {
			return cached, nil
		} else if err != nil {
			logger.Warnw("proxy_products_cache_read_failed", "error", err)
		}
	}

	result, err := s.gateway.Fetch(ctx, action, phone)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := cache.SetJSON(ctx, productsCacheKey, result.Raw, s.productsTTL); err != nil {
			logger.Warnw("proxy_products_cache_write_failed", "error", err)
		}
	}
	return result.Raw, nil
}

// Forward 原样转发订单
func (s *ProxyService) Forward(ctx context.Context, body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, ErrProxyBodyInvalid
	}
	result, err := s.gateway.Submit(ctx, body)
	if err != nil {
		return nil, err
	}
	return result.Raw, nil
}
