package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/repository"
)

// CartSession 单个购物会话的购物车
// 在 Hydrate 完成前拒绝任何修改，避免空的初始状态覆盖已保存的快照
type CartSession struct {
	sessionID string
	cart      *Cart
	hydrated  bool
	svc       *CartService
}

// Hydrated 是否已从存储恢复
func (cs *CartSession) Hydrated() bool {
	return cs.hydrated
}

// Cart 当前购物车（只读用途）
func (cs *CartSession) Cart() *Cart {
	return cs.cart
}

// Hydrate 从存储恢复购物车，只会执行一次
// 快照损坏时记录警告并以空车继续
func (cs *CartSession) Hydrate(ctx context.Context) error {
	if cs.hydrated {
		return nil
	}
	payload, found, err := cs.svc.repo.Get(ctx, cs.sessionID, constants.SessionKeyCart)
	if err != nil {
		return err
	}
	if found {
		lines, err := decodeCartSnapshot(payload)
		if err != nil {
			logger.Warnw("cart_snapshot_decode_failed",
				"session_id", cs.sessionID,
				"error", err,
			)
			lines = nil
		}
		cs.cart = NewCart(cs.svc.policy, lines...)
	}
	cs.hydrated = true
	return nil
}

// Mutate 修改购物车，有变化时整体持久化
func (cs *CartSession) Mutate(ctx context.Context, fn func(cart *Cart) (bool, error)) error {
	if !cs.hydrated {
		return ErrCartNotHydrated
	}
	changed, err := fn(cs.cart)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return cs.persist(ctx)
}

func (cs *CartSession) persist(ctx context.Context) error {
	payload, err := encodeCartSnapshot(cs.cart.Lines(), cs.svc.now())
	if err != nil {
		return err
	}
	if err := cs.svc.repo.Put(ctx, cs.sessionID, constants.SessionKeyCart, payload); err != nil {
		logger.Errorw("cart_snapshot_save_failed",
			"session_id", cs.sessionID,
			"error", err,
		)
		return err
	}
	return nil
}

// CartService 购物车服务
type CartService struct {
	repo    repository.BlobRepository
	catalog *ProductService
	policy  PricingPolicy
	now     func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.BlobRepository, catalog *ProductService, policy PricingPolicy) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		policy:  policy,
		now:     time.Now,
	}
}

// Policy 当前运费规则
func (s *CartService) Policy() PricingPolicy {
	return s.policy
}

// Session 创建未恢复的会话购物车
func (s *CartService) Session(sessionID string) *CartSession {
	return &CartSession{
		sessionID: sessionID,
		cart:      NewCart(s.policy),
		svc:       s,
	}
}

// Open 创建并恢复会话购物车
func (s *CartService) Open(ctx context.Context, sessionID string) (*CartSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionRequired
	}
	cs := s.Session(sessionID)
	if err := cs.Hydrate(ctx); err != nil {
		return nil, err
	}
	return cs, nil
}

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	CartSelection
	Quantity int
}

// Get 获取购物车汇总
func (s *CartService) Get(ctx context.Context, sessionID string) (CartSummary, error) {
	cs, err := s.Open(ctx, sessionID)
	if err != nil {
		return CartSummary{}, err
	}
	return cs.cart.Summary(), nil
}

// AddItem 加入商品
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddCartItemInput) (CartSummary, error) {
	if input.Quantity <= 0 || input.Quantity > maxLineQuantity {
		return CartSummary{}, ErrInvalidQuantity
	}
	line, err := s.catalog.ResolveLine(input.CartSelection)
	if err != nil {
		return CartSummary{}, err
	}
	return s.mutate(ctx, sessionID, func(cart *Cart) (bool, error) {
		if err := cart.Add(line, input.Quantity); err != nil {
			return false, err
		}
		return true, nil
	})
}

// SetQuantity 设置数量（小于 1 时不变，行不存在返回 ErrCartLineNotFound）
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, identity models.LineIdentity, quantity int) (CartSummary, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) (bool, error) {
		return cart.SetQuantity(identity, quantity)
	})
}

// AdjustQuantity 增减数量（1 到单行上限之间）
func (s *CartService) AdjustQuantity(ctx context.Context, sessionID string, identity models.LineIdentity, delta int) (CartSummary, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) (bool, error) {
		return cart.AdjustQuantity(identity, delta)
	})
}

// RemoveItem 删除整行
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, identity models.LineIdentity) (CartSummary, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) (bool, error) {
		return cart.Remove(identity)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID string) (CartSummary, error) {
	return s.mutate(ctx, sessionID, func(cart *Cart) (bool, error) {
		return cart.Clear(), nil
	})
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(cart *Cart) (bool, error)) (CartSummary, error) {
	cs, err := s.Open(ctx, sessionID)
	if err != nil {
		return CartSummary{}, err
	}
	if err := cs.Mutate(ctx, fn); err != nil {
		if !errors.Is(err, ErrInvalidQuantity) && !errors.Is(err, ErrCartLineNotFound) {
			logger.Warnw("cart_mutate_failed", "session_id", sessionID, "error", err)
		}
		return CartSummary{}, err
	}
	return cs.cart.Summary(), nil
}
