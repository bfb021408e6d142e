package service

import (
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"

	"github.com/shopspring/decimal"
)

// PromotionGate 促销可用性校验口径
type PromotionGate int

const (
	// GateStatusOnly 仅要求状态为 active
	GateStatusOnly PromotionGate = iota
	// GateWindowOnly 仅要求当前时间落在活动窗口内
	GateWindowOnly
	// GateStatusAndWindow 状态与时间窗口双重校验（结算链路使用）
	GateStatusAndWindow
)

// ResolvedDiscount 单个促销对单个商品的解析结果
type ResolvedDiscount struct {
	PromotionID    uint         `json:"promotion_id"`
	Applies        bool         `json:"applies"`
	Type           string       `json:"type"`
	EffectiveValue models.Money `json:"effective_value"`
	FinalPrice     models.Money `json:"final_price"`
}

// PromotionEngine 促销折扣解析引擎（纯计算，无持久化依赖）
type PromotionEngine struct{}

// NewPromotionEngine 创建折扣引擎
func NewPromotionEngine() *PromotionEngine {
	return &PromotionEngine{}
}

// AppliesTo 判断促销是否覆盖指定商品
// 三种作用域互斥：全场、指定商品、指定分类。
func (e *PromotionEngine) AppliesTo(promotion *models.Promotion, productID, categoryID uint) bool {
	if promotion == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(promotion.ApplicationType)) {
	case constants.ApplicationTypeStorewide:
		return true
	case constants.ApplicationTypeSpecificProducts:
		return promotion.ProductIDs.Contains(productID)
	case constants.ApplicationTypeCategories:
		return promotion.CategoryIDs.Contains(categoryID)
	default:
		return false
	}
}

// EffectiveValue 返回商品生效的折扣值
// 存在单品覆盖值时以覆盖值为准，否则回落到促销默认值。
func (e *PromotionEngine) EffectiveValue(promotion *models.Promotion, productID uint) models.Money {
	if promotion == nil {
		return models.Money{}
	}
	if override, ok := promotion.ProductDiscounts.Lookup(productID); ok {
		return override
	}
	return promotion.Value
}

// CalculateFinalPrice 按折扣类型计算到手价
// percentage: base * (1 - value/100)；fixed: base - value；结果不为负，保留 2 位小数。
func (e *PromotionEngine) CalculateFinalPrice(base models.Money, promotionType string, value models.Money) (models.Money, error) {
	if err := ValidateDiscountValue(promotionType, value); err != nil {
		return models.Money{}, err
	}

	var discounted decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(promotionType)) {
	case constants.PromotionTypePercentage:
		percent := decimal.NewFromInt(100).Sub(value.Decimal)
		discounted = base.Decimal.Mul(percent).Div(decimal.NewFromInt(100))
	case constants.PromotionTypeFixed:
		discounted = base.Decimal.Sub(value.Decimal)
	default:
		return models.Money{}, ErrPromotionValueInvalid
	}
	if discounted.LessThan(decimal.Zero) {
		discounted = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discounted), nil
}

// Resolve 解析单个促销对商品的完整结果
// 不命中时返回 Applies=false 且 FinalPrice 等于原价。
func (e *PromotionEngine) Resolve(promotion *models.Promotion, product *models.Product, now time.Time, gate PromotionGate) (ResolvedDiscount, error) {
	if promotion == nil || product == nil {
		return ResolvedDiscount{}, ErrPromotionInvalid
	}

	result := ResolvedDiscount{
		PromotionID: promotion.ID,
		Type:        promotion.Type,
		FinalPrice:  product.PriceAmount,
	}
	if !Usable(promotion, now, gate) {
		return result, nil
	}
	if !e.AppliesTo(promotion, product.ID, product.CategoryID) {
		return result, nil
	}

	value := e.EffectiveValue(promotion, product.ID)
	finalPrice, err := e.CalculateFinalPrice(product.PriceAmount, promotion.Type, value)
	if err != nil {
		return ResolvedDiscount{}, err
	}

	result.Applies = true
	result.EffectiveValue = value
	result.FinalPrice = finalPrice
	return result, nil
}

// ResolveBest 在多个促销中选出到手价最低的一个
// 到手价相同时取 ID 最小者，保证结果稳定可复现。
func (e *PromotionEngine) ResolveBest(promotions []models.Promotion, product *models.Product, now time.Time, gate PromotionGate) (ResolvedDiscount, error) {
	if product == nil {
		return ResolvedDiscount{}, ErrPromotionInvalid
	}

	best := ResolvedDiscount{FinalPrice: product.PriceAmount}
	for i := range promotions {
		resolved, err := e.Resolve(&promotions[i], product, now, gate)
		if err != nil {
			return ResolvedDiscount{}, err
		}
		if !resolved.Applies {
			continue
		}
		if !best.Applies ||
			resolved.FinalPrice.Decimal.LessThan(best.FinalPrice.Decimal) ||
			(resolved.FinalPrice.Decimal.Equal(best.FinalPrice.Decimal) && resolved.PromotionID < best.PromotionID) {
			best = resolved
		}
	}
	return best, nil
}

// ValidateDiscountValue 校验折扣值取值范围
// percentage 必须在 (0, 100]，fixed 必须大于 0。
func ValidateDiscountValue(promotionType string, value models.Money) error {
	switch strings.ToLower(strings.TrimSpace(promotionType)) {
	case constants.PromotionTypePercentage:
		if value.Decimal.LessThanOrEqual(decimal.Zero) || value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPromotionValueInvalid
		}
	case constants.PromotionTypeFixed:
		if value.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrPromotionValueInvalid
		}
	default:
		return ErrPromotionValueInvalid
	}
	return nil
}

// DefaultOverrideValue 新纳入作用域商品的默认覆盖值
func DefaultOverrideValue(promotionType string) models.Money {
	if strings.ToLower(strings.TrimSpace(promotionType)) == constants.PromotionTypeFixed {
		return models.NewMoneyFromDecimal(decimal.NewFromInt(constants.DefaultOverrideFixed))
	}
	return models.NewMoneyFromDecimal(decimal.NewFromInt(constants.DefaultOverridePercentage))
}
