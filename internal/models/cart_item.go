package models

import (
	"errors"
	"strings"

	"github.com/neighborwang/roastery/internal/constants"
)

var (
	ErrPackagingKindInvalid = errors.New("packaging kind invalid")
	ErrPackagingFormInvalid = errors.New("packaging form invalid")
	ErrPackagingGrindMisuse = errors.New("grind only applies to ground bulk packaging")
)

// Packaging 包装规格
// Kind 为标签：bulk 携带 Form/Grind（Grind 仅咖啡粉时有值），drip_bag 只有 Variant
type Packaging struct {
	Kind    string `json:"kind"`
	Variant string `json:"variant"`
	Form    string `json:"form,omitempty"`
	Grind   string `json:"grind,omitempty"`
}

// BulkPackaging 创建散装（咖啡豆/咖啡粉）规格
func BulkPackaging(variant, form, grind string) Packaging {
	p := Packaging{
		Kind:    constants.PackagingKindBulk,
		Variant: strings.TrimSpace(variant),
		Form:    strings.TrimSpace(form),
	}
	if p.Form == constants.FormGround {
		p.Grind = strings.TrimSpace(grind)
	}
	return p
}

// DripBagPackaging 创建濾掛规格
func DripBagPackaging(variant string) Packaging {
	return Packaging{
		Kind:    constants.PackagingKindDripBag,
		Variant: strings.TrimSpace(variant),
	}
}

// Validate 校验标签与字段的一致性
func (p Packaging) Validate() error {
	switch p.Kind {
	case constants.PackagingKindBulk:
		switch p.Form {
		case constants.FormWholeBean:
			if p.Grind != "" {
				return ErrPackagingGrindMisuse
			}
		case constants.FormGround:
			if p.Grind == "" {
				return ErrPackagingFormInvalid
			}
		default:
			return ErrPackagingFormInvalid
		}
	case constants.PackagingKindDripBag:
		if p.Form != "" || p.Grind != "" {
			return ErrPackagingGrindMisuse
		}
	default:
		return ErrPackagingKindInvalid
	}
	if p.Variant == "" {
		return ErrPackagingKindInvalid
	}
	return nil
}

// IsDripBagVariant 判断规格名是否为濾掛/掛耳
func IsDripBagVariant(variant string) bool {
	return strings.Contains(variant, "濾掛") || strings.Contains(variant, "掛耳")
}

// LineIdentity 购物车行唯一标识
type LineIdentity struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Form      string `json:"form,omitempty"`
	Grind     string `json:"grind,omitempty"`
}

// CartLine 购物车行
type CartLine struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice Money     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
	Packaging Packaging `json:"packaging"`
}

// Identity 返回行标识
func (l CartLine) Identity() LineIdentity {
	return LineIdentity{
		ProductID: l.ProductID,
		Variant:   l.Packaging.Variant,
		Form:      l.Packaging.Form,
		Grind:     l.Packaging.Grind,
	}
}

// LineTotal 行小计
func (l CartLine) LineTotal() Money {
	return l.UnitPrice.Times(l.Quantity)
}
