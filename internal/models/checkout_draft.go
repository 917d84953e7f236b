package models

// CheckoutDraft 结帐表单草稿
// 字段名沿用上游脚本约定的 buyer 结构
type CheckoutDraft struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	StoreName string `json:"storeName"`
	StoreID   string `json:"storeId"`
	Note      string `json:"note"`
}

// StoreSelection 门市选择结果
type StoreSelection struct {
	StoreID      string `json:"store_id"`
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address,omitempty"`
}

// Present 是否带有门市名称
func (s StoreSelection) Present() bool {
	return s.StoreName != ""
}
