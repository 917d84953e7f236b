package service

import (
	"github.com/neighborwang/roastery/internal/models"
)

// maxLineQuantity 单行商品数量上限
const maxLineQuantity = 99

// PricingPolicy 运费规则
type PricingPolicy struct {
	FreeShippingThreshold models.Money
	ShippingFee           models.Money
}

// DefaultPricingPolicy 满 1000 免运，否则运费 60
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: models.NewMoney(1000),
		ShippingFee:           models.NewMoney(60),
	}
}

// NewPricingPolicy 按配置创建运费规则，非正数回退默认值
func NewPricingPolicy(threshold, fee int64) PricingPolicy {
	policy := DefaultPricingPolicy()
	if threshold > 0 {
		policy.FreeShippingThreshold = models.NewMoney(threshold)
	}
	if fee >= 0 {
		policy.ShippingFee = models.NewMoney(fee)
	}
	return policy
}

// CartSummary 购物车汇总
type CartSummary struct {
	Items                    []models.CartLine `json:"items"`
	Count                    int               `json:"count"`
	Subtotal                 models.Money      `json:"subtotal"`
	ShippingFee              models.Money      `json:"shipping_fee"`
	Total                    models.Money      `json:"total"`
	FreeShippingThreshold    models.Money      `json:"free_shipping_threshold"`
	RemainingForFreeShipping models.Money      `json:"remaining_for_free_shipping"`
}

// Cart 购物车聚合
// 行顺序即加入顺序，相同标识的商品合并数量
type Cart struct {
	lines  []models.CartLine
	policy PricingPolicy
}

// NewCart 创建购物车
func NewCart(policy PricingPolicy, lines ...models.CartLine) *Cart {
	c := &Cart{policy: policy}
	c.lines = append(c.lines, lines...)
	return c
}

// Lines 返回行副本
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) indexOf(identity models.LineIdentity) int {
	for i := range c.lines {
		if c.lines[i].Identity() == identity {
			return i
		}
	}
	return -1
}

// Add 加入商品，已存在时累加数量
// 合并后超过单行上限时拒绝，购物车不变
func (c *Cart) Add(line models.CartLine, quantity int) error {
	if quantity <= 0 || quantity > maxLineQuantity {
		return ErrInvalidQuantity
	}
	if err := line.Packaging.Validate(); err != nil {
		return err
	}
	if idx := c.indexOf(line.Identity()); idx >= 0 {
		if quantity > maxLineQuantity-c.lines[idx].Quantity {
			return ErrInvalidQuantity
		}
		c.lines[idx].Quantity += quantity
		return nil
	}
	line.Quantity = quantity
	c.lines = append(c.lines, line)
	return nil
}

// Remove 删除整行
func (c *Cart) Remove(identity models.LineIdentity) (bool, error) {
	idx := c.indexOf(identity)
	if idx < 0 {
		return false, ErrCartLineNotFound
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return true, nil
}

// SetQuantity 设置数量，小于 1 时忽略，超过上限时拒绝
func (c *Cart) SetQuantity(identity models.LineIdentity, quantity int) (bool, error) {
	if quantity < 1 {
		return false, nil
	}
	if quantity > maxLineQuantity {
		return false, ErrInvalidQuantity
	}
	idx := c.indexOf(identity)
	if idx < 0 {
		return false, ErrCartLineNotFound
	}
	if c.lines[idx].Quantity == quantity {
		return false, nil
	}
	c.lines[idx].Quantity = quantity
	return true, nil
}

// AdjustQuantity 按增量调整数量，结果限制在 [1, maxLineQuantity]
func (c *Cart) AdjustQuantity(identity models.LineIdentity, delta int) (bool, error) {
	idx := c.indexOf(identity)
	if idx < 0 {
		return false, ErrCartLineNotFound
	}
	current := c.lines[idx].Quantity
	var next int
	switch {
	case delta >= maxLineQuantity-current:
		next = maxLineQuantity
	case delta <= 1-current:
		next = 1
	default:
		next = current + delta
	}
	if next == current {
		return false, nil
	}
	c.lines[idx].Quantity = next
	return true, nil
}

// Clear 清空
func (c *Cart) Clear() bool {
	if len(c.lines) == 0 {
		return false
	}
	c.lines = nil
	return true
}

// Count 商品总件数
func (c *Cart) Count() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Subtotal 商品小计
func (c *Cart) Subtotal() models.Money {
	sum := models.NewMoney(0)
	for _, line := range c.lines {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

// ShippingFee 运费
func (c *Cart) ShippingFee() models.Money {
	if c.Subtotal().GreaterThanOrEqual(c.policy.FreeShippingThreshold.Decimal) {
		return models.NewMoney(0)
	}
	return c.policy.ShippingFee
}

// Total 应付总额
func (c *Cart) Total() models.Money {
	return c.Subtotal().Add(c.ShippingFee())
}

// RemainingForFreeShipping 距离免运还差的金额，已免运时为 0
func (c *Cart) RemainingForFreeShipping() models.Money {
	subtotal := c.Subtotal()
	if subtotal.GreaterThanOrEqual(c.policy.FreeShippingThreshold.Decimal) {
		return models.NewMoney(0)
	}
	return c.policy.FreeShippingThreshold.Sub(subtotal)
}

// Summary 汇总视图
func (c *Cart) Summary() CartSummary {
	return CartSummary{
		Items:                    c.Lines(),
		Count:                    c.Count(),
		Subtotal:                 c.Subtotal(),
		ShippingFee:              c.ShippingFee(),
		Total:                    c.Total(),
		FreeShippingThreshold:    c.policy.FreeShippingThreshold,
		RemainingForFreeShipping: c.RemainingForFreeShipping(),
	}
}
