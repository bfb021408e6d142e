package service

import "errors"

// 服务层统一错误定义，由 HTTP 层映射为响应码。
var (
	ErrNotFound = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrPromotionNotFound      = errors.New("promotion not found")
	ErrPromotionInvalid       = errors.New("promotion invalid")
	ErrPromotionCodeExists    = errors.New("promotion code exists")
	ErrPromotionValueInvalid  = errors.New("promotion discount value invalid")
	ErrPromotionOverridePrice = errors.New("promotion override exceeds product price")
	ErrPromotionScopeInvalid  = errors.New("promotion scope invalid")
	ErrPromotionStatusInvalid = errors.New("promotion status transition invalid")
	ErrPromotionNotUsable     = errors.New("promotion not usable")

	ErrProductNotFound  = errors.New("product not found")
	ErrProductInvalid   = errors.New("product invalid")
	ErrProductSlugTaken = errors.New("product slug exists")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInvalid   = errors.New("category invalid")
	ErrCategorySlugTaken = errors.New("category slug exists")
	ErrCategoryInUse     = errors.New("category in use")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderInvalid       = errors.New("order invalid")
	ErrOrderItemInvalid   = errors.New("order item invalid")
	ErrOrderStatusInvalid = errors.New("order status transition invalid")
	ErrStockInsufficient  = errors.New("stock insufficient")
)
