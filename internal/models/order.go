package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单号
	Email          string         `gorm:"index" json:"email"`                                           // 下单邮箱
	Status         string         `gorm:"not null;index" json:"status"`                                 // 订单状态
	Currency       string         `gorm:"type:varchar(10);not null" json:"currency"`                    // 币种
	OriginalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // 折前金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付金额
	PaidAt         *time.Time     `json:"paid_at"`                                                      // 支付时间
	CanceledAt     *time.Time     `json:"canceled_at"`                                                  // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单明细
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细表
type OrderItem struct {
	ID          uint   `gorm:"primarykey" json:"id"`             // 主键
	OrderID     uint   `gorm:"not null;index" json:"order_id"`   // 订单ID
	ProductID   uint   `gorm:"not null;index" json:"product_id"` // 商品ID
	ProductName string `gorm:"not null" json:"product_name"`     // 下单时商品名称快照
	Quantity    int    `gorm:"not null" json:"quantity"`         // 数量
	UnitPrice   Money  `gorm:"type:decimal(20,2);not null" json:"unit_price"`       // 原单价
	FinalPrice  Money  `gorm:"type:decimal(20,2);not null" json:"final_price"`      // 折后单价
	TotalPrice  Money  `gorm:"type:decimal(20,2);not null" json:"total_price"`      // 行小计（折后）
	PromotionID *uint  `gorm:"index" json:"promotion_id"`        // 命中的促销ID（未命中为空）
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
