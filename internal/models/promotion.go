package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ProductDiscount 促销活动内单个商品的折扣覆盖值
type ProductDiscount struct {
	ProductID uint  `json:"product_id"` // 商品ID
	Value     Money `json:"value"`      // 覆盖折扣值（沿用促销折扣类型）
}

// ProductDiscountList 商品折扣覆盖表（JSON 列）
type ProductDiscountList []ProductDiscount

// Value 实现 driver.Valuer 接口
func (l ProductDiscountList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *ProductDiscountList) Scan(value interface{}) error {
	if value == nil {
		*l = ProductDiscountList{}
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Lookup 查找指定商品的覆盖值
func (l ProductDiscountList) Lookup(productID uint) (Money, bool) {
	for _, entry := range l {
		if entry.ProductID == productID {
			return entry.Value, true
		}
	}
	return Money{}, false
}

// Promotion 促销折扣规则
// 注意：促销记录为硬删除（删除不可恢复），因此不带软删除列。
type Promotion struct {
	ID               uint                `gorm:"primarykey" json:"id"`                                      // 主键
	Name             string              `gorm:"not null" json:"name"`                                      // 名称
	Code             string              `gorm:"uniqueIndex;not null" json:"code"`                          // 面向顾客的唯一促销码
	Type             string              `gorm:"not null" json:"type"`                                      // 折扣类型（percentage/fixed）
	Value            Money               `gorm:"type:decimal(20,2);not null" json:"value"`                  // 默认折扣值（百分比或固定金额）
	ApplicationType  string              `gorm:"not null;index" json:"application_type"`                    // 适用范围（storewide/specific-products/categories）
	ProductIDs       UintArray           `gorm:"type:json" json:"products"`                                 // 指定商品ID集合（仅 specific-products）
	CategoryIDs      UintArray           `gorm:"type:json" json:"categories"`                               // 指定分类ID集合（仅 categories）
	ProductDiscounts ProductDiscountList `gorm:"type:json" json:"product_discounts"`                        // 商品级折扣覆盖表（仅 specific-products）
	Status           string              `gorm:"not null;index;default:'draft'" json:"status"`              // 状态（draft/scheduled/active/inactive/ended）
	StartsAt         *time.Time          `gorm:"index" json:"starts_at"`                                    // 生效时间（空表示不限制）
	EndsAt           *time.Time          `gorm:"index" json:"ends_at"`                                      // 失效时间（空表示不限制）
	UsageCount       int                 `gorm:"not null;default:0" json:"usage_count"`                     // 已使用次数（订单侧累加）
	Revenue          Money               `gorm:"type:decimal(20,2);not null;default:0" json:"revenue"`      // 累计成交金额（订单侧累加）
	CreatedAt        time.Time           `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time           `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}
