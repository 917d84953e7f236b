package storemap

import (
	"errors"
	"net/url"
	"strings"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/models"
)

// ErrCallbackURLMissing 未配置回调地址
var ErrCallbackURLMissing = errors.New("store map callback url missing")

const (
	defaultMapURL   = "https://emap.presco.com.tw/c2cemap.ashx"
	defaultShopID   = "870"
	defaultShowType = "1"
)

// Config 超商电子地图配置
type Config struct {
	MapURL      string
	ShopID      string
	ShowType    string
	CallbackURL string
}

// Picker 门市选择跳转与回调转换
type Picker struct {
	cfg Config
}

// NewPicker 创建门市选择器；CallbackURL 为空时按 publicURL 拼接 /store-callback
func NewPicker(cfg Config, publicURL string) *Picker {
	if strings.TrimSpace(cfg.MapURL) == "" {
		cfg.MapURL = defaultMapURL
	}
	if strings.TrimSpace(cfg.ShopID) == "" {
		cfg.ShopID = defaultShopID
	}
	if strings.TrimSpace(cfg.ShowType) == "" {
		cfg.ShowType = defaultShowType
	}
	if strings.TrimSpace(cfg.CallbackURL) == "" && strings.TrimSpace(publicURL) != "" {
		cfg.CallbackURL = strings.TrimRight(strings.TrimSpace(publicURL), "/") + constants.PathStoreCallback
	}
	return &Picker{cfg: cfg}
}

// PickerURL 门市地图跳转地址
func (p *Picker) PickerURL() (string, error) {
	callback := strings.TrimSpace(p.cfg.CallbackURL)
	if callback == "" {
		return "", ErrCallbackURLMissing
	}
	target, err := url.Parse(p.cfg.MapURL)
	if err != nil {
		return "", err
	}
	query := target.Query()
	query.Set("eshopid", p.cfg.ShopID)
	query.Set("showtype", p.cfg.ShowType)
	query.Set("tempvar", "")
	query.Set("url", callback)
	target.RawQuery = query.Encode()
	return target.String(), nil
}

// ParseCallback 读取地图回传的表单字段
func ParseCallback(form url.Values) models.StoreSelection {
	return models.StoreSelection{
		StoreID:      strings.TrimSpace(form.Get("storeid")),
		StoreName:    strings.TrimSpace(form.Get("storename")),
		StoreAddress: strings.TrimSpace(form.Get("storeaddress")),
	}
}

// ReturnURL 回到结帐页的相对地址，空字段不带入 query
func ReturnURL(sel models.StoreSelection) string {
	query := url.Values{}
	if sel.StoreID != "" {
		query.Set("storeId", sel.StoreID)
	}
	if sel.StoreName != "" {
		query.Set("storeName", sel.StoreName)
	}
	if len(query) == 0 {
		return constants.PathCheckout
	}
	return constants.PathCheckout + "?" + query.Encode()
}
