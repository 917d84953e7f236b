package models

import "github.com/neighborwang/roastery/internal/constants"

// FlavorProfile 风味雷达分数（1-5）
type FlavorProfile struct {
	Acidity    int `json:"acidity"`
	Sweetness  int `json:"sweetness"`
	Bitterness int `json:"bitterness"`
	Body       int `json:"body"`
	Aftertaste int `json:"aftertaste"`
}

// ProductOption 商品包装选项
type ProductOption struct {
	Variant string `json:"variant"`
	Kind    string `json:"kind"`
	Price   Money  `json:"price"`
}

// Product 咖啡豆商品
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Country       string          `json:"country"`
	Region        string          `json:"region"`
	Process       string          `json:"process"`
	RoastLevel    string          `json:"roast_level"`
	Price         Money           `json:"price"`
	FlavorNotes   []string        `json:"flavor_notes"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	FlavorProfile FlavorProfile   `json:"flavor_profile"`
	Options       []ProductOption `json:"options"`
}

// Option 按规格名查找选项
func (p *Product) Option(variant string) (ProductOption, bool) {
	if p == nil {
		return ProductOption{}, false
	}
	for _, opt := range p.Options {
		if opt.Variant == variant {
			return opt, true
		}
	}
	return ProductOption{}, false
}

func standardOptions(bulkPrice, dripBagPrice int64) []ProductOption {
	return []ProductOption{
		{Variant: constants.VariantBulk200g, Kind: constants.PackagingKindBulk, Price: NewMoney(bulkPrice)},
		{Variant: constants.VariantDripBag, Kind: constants.PackagingKindDripBag, Price: NewMoney(dripBagPrice)},
	}
}

// SeedProducts 店内烘焙豆清单
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "衣索比亞 耶加雪菲 沃卡",
			Country:     "衣索比亞",
			Region:      "耶加雪菲",
			Process:     "水洗",
			RoastLevel:  "淺焙",
			Price:       NewMoney(450),
			FlavorNotes: []string{"柑橘", "茉莉花", "蜂蜜"},
			Description: "經典的耶加雪菲風味，酸值明亮，口感乾淨。入口時可以感受到豐富的花香氣息，尾韻帶有蜂蜜的甜感。",
			ImageURL:    "/coffee-beans/yirgacheffe.jpg",
			FlavorProfile: FlavorProfile{
				Acidity: 5, Sweetness: 4, Bitterness: 1, Body: 2, Aftertaste: 4,
			},
			Options: standardOptions(450, 350),
		},
		{
			ID:          "2",
			Name:        "哥倫比亞 天堂莊園",
			Country:     "哥倫比亞",
			Region:      "考卡",
			Process:     "雙重厭氧",
			RoastLevel:  "中焙",
			Price:       NewMoney(550),
			FlavorNotes: []string{"草莓優格", "熱帶水果", "酒香"},
			Description: "強烈的特殊處理法風味，適合喜歡嚐鮮的你。雙重厭氧發酵帶來了爆炸性的草莓與優格香氣。",
			ImageURL:    "/coffee-beans/colombia.jpg",
			FlavorProfile: FlavorProfile{
				Acidity: 4, Sweetness: 5, Bitterness: 2, Body: 3, Aftertaste: 5,
			},
			Options: standardOptions(550, 420),
		},
		{
			ID:          "3",
			Name:        "印尼 黃金曼特寧",
			Country:     "印尼",
			Region:      "蘇門答臘",
			Process:     "濕剝法",
			RoastLevel:  "深焙",
			Price:       NewMoney(400),
			FlavorNotes: []string{"仙草", "黑巧克力", "奶油"},
			Description: "厚實醇厚，不酸的老饕首選。經過三次手選的黃金曼特寧，口感乾淨且帶有濃郁的藥草與巧克力尾韻。",
			ImageURL:    "/coffee-beans/mandheling.jpg",
			FlavorProfile: FlavorProfile{
				Acidity: 1, Sweetness: 3, Bitterness: 5, Body: 5, Aftertaste: 4,
			},
			Options: standardOptions(400, 320),
		},
	}
}
