package constants

// 促销折扣类型常量
const (
	PromotionTypePercentage = "percentage"
	PromotionTypeFixed      = "fixed"
)

// 促销适用范围常量
const (
	ApplicationTypeStorewide        = "storewide"
	ApplicationTypeSpecificProducts = "specific-products"
	ApplicationTypeCategories       = "categories"
)

// 促销状态常量
const (
	PromotionStatusDraft     = "draft"
	PromotionStatusScheduled = "scheduled"
	PromotionStatusActive    = "active"
	PromotionStatusInactive  = "inactive"
	PromotionStatusEnded     = "ended"
)

// 新增范围商品时的默认覆盖折扣值
const (
	DefaultOverridePercentage = 10
	DefaultOverrideFixed      = 5
)

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskPromotionEndSweep  = "promotion:end_sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vm"
	CacheKeyCatalog    = "catalog:products"
	CacheKeyCategories = "catalog:categories"
)

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)
