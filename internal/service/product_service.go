package service

import (
	"strings"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/models"
)

// ProductService 商品目录服务
type ProductService struct {
	products []models.Product
	index    map[string]int
}

// NewProductService 创建商品服务
func NewProductService(products []models.Product) *ProductService {
	s := &ProductService{
		products: append([]models.Product(nil), products...),
		index:    make(map[string]int, len(products)),
	}
	for i, p := range s.products {
		s.index[p.ID] = i
	}
	return s
}

// List 商品列表（保持上架顺序）
func (s *ProductService) List() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Get 按 ID 获取商品
func (s *ProductService) Get(id string) (*models.Product, error) {
	idx, ok := s.index[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrProductNotFound
	}
	product := s.products[idx]
	return &product, nil
}

// CartSelection 加入购物车时的商品选择
type CartSelection struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Form      string `json:"form"`
	Grind     string `json:"grind"`
}

// ResolveLine 将用户选择解析为购物车行，价格以目录为准
func (s *ProductService) ResolveLine(sel CartSelection) (models.CartLine, error) {
	product, err := s.Get(sel.ProductID)
	if err != nil {
		return models.CartLine{}, err
	}
	variant := strings.TrimSpace(sel.Variant)
	if variant == "" {
		variant = constants.VariantBulk200g
	}
	option, ok := product.Option(variant)
	if !ok {
		return models.CartLine{}, ErrProductOptionAbsent
	}

	var packaging models.Packaging
	switch option.Kind {
	case constants.PackagingKindDripBag:
		packaging = models.DripBagPackaging(option.Variant)
	default:
		form := strings.TrimSpace(sel.Form)
		if form == "" {
			form = constants.FormWholeBean
		}
		grind := strings.TrimSpace(sel.Grind)
		if form == constants.FormGround {
			if grind == "" {
				grind = constants.DefaultGrind
			}
			if !isGrindOption(grind) {
				return models.CartLine{}, ErrGrindInvalid
			}
		}
		packaging = models.BulkPackaging(option.Variant, form, grind)
	}
	if err := packaging.Validate(); err != nil {
		return models.CartLine{}, err
	}

	return models.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: option.Price,
		ImageURL:  product.ImageURL,
		Packaging: packaging,
	}, nil
}

func isGrindOption(grind string) bool {
	for _, opt := range constants.GrindOptions {
		if opt == grind {
			return true
		}
	}
	return false
}
