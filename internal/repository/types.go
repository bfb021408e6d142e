package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Brand        string
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// PromotionListFilter 查询促销列表的过滤条件
type PromotionListFilter struct {
	Page            int
	PageSize        int
	ID              uint
	Code            string
	Status          string
	ApplicationType string
	Search          string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	OrderNo     string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
