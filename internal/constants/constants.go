package constants

// 包装规格常量
const (
	VariantBulk200g = "200g"
	VariantDripBag  = "濾掛(10入)"
)

// 包装类型常量
const (
	PackagingKindBulk    = "bulk"
	PackagingKindDripBag = "drip_bag"
)

// 咖啡型态常量
const (
	FormWholeBean = "咖啡豆"
	FormGround    = "咖啡粉"
)

// GrindOptions 可选研磨度
var GrindOptions = []string{
	"細研磨 (義式濃縮)",
	"中細研磨 (摩卡壺)",
	"中研磨 (手沖/美式)",
	"中粗研磨 (聰明濾杯)",
	"粗研磨 (法式濾壓)",
}

// DefaultGrind 默认研磨度
const DefaultGrind = "中研磨 (手沖/美式)"

// 会话存储键
const (
	SessionKeyCart  = "cart"
	SessionKeyDraft = "checkout_draft"
)

// 上游脚本 action
const (
	UpstreamActionGetProducts = "getProducts"
	UpstreamActionCheckOrder  = "checkOrder"
)

// 存储驱动
const (
	StorageDriverDatabase = "database"
	StorageDriverRedis    = "redis"
)

// 队列与任务
const (
	QueueDefault    = "default"
	TaskDraftExpire = "draft:expire"
)

// 页面路径
const (
	PathCart          = "/cart"
	PathCheckout      = "/checkout"
	PathStoreCallback = "/store-callback"
)

// PhonePattern 台湾手机号格式
const PhonePattern = `^09\d{8}$`

// SevenElevenTrackingURL 7-11 物流查询地址
const SevenElevenTrackingURL = "https://eservice.7-11.com.tw/E-Tracking/search.aspx"

// gin 上下文键
const (
	ContextKeyRequestID = "request_id"
	ContextKeySessionID = "session_id"
)
