package service

import (
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
)

// promotionTransitions 促销状态机允许的迁移表
// draft 可进入 active 或 scheduled；scheduled 仅能激活；
// active 与 inactive 可互相切换；两者均可结束；ended 为终态。
var promotionTransitions = map[string][]string{
	constants.PromotionStatusDraft:     {constants.PromotionStatusActive, constants.PromotionStatusScheduled},
	constants.PromotionStatusScheduled: {constants.PromotionStatusActive},
	constants.PromotionStatusActive:    {constants.PromotionStatusInactive, constants.PromotionStatusEnded},
	constants.PromotionStatusInactive:  {constants.PromotionStatusActive, constants.PromotionStatusEnded},
	constants.PromotionStatusEnded:     {},
}

// CanTransition 判断促销状态迁移是否合法
func CanTransition(from, to string) bool {
	allowed, ok := promotionTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// ValidPromotionStatus 判断状态值是否属于状态机
func ValidPromotionStatus(status string) bool {
	_, ok := promotionTransitions[status]
	return ok
}

// WithinWindow 判断当前时间是否落在活动窗口内
// 起止时间为空表示该侧无界。
func WithinWindow(promotion *models.Promotion, now time.Time) bool {
	if promotion == nil {
		return false
	}
	if promotion.StartsAt != nil && now.Before(*promotion.StartsAt) {
		return false
	}
	if promotion.EndsAt != nil && !now.Before(*promotion.EndsAt) {
		return false
	}
	return true
}

// Usable 按指定口径判断促销能否参与价格解析
func Usable(promotion *models.Promotion, now time.Time, gate PromotionGate) bool {
	if promotion == nil {
		return false
	}
	switch gate {
	case GateStatusOnly:
		return promotion.Status == constants.PromotionStatusActive
	case GateWindowOnly:
		return WithinWindow(promotion, now)
	default:
		return promotion.Status == constants.PromotionStatusActive && WithinWindow(promotion, now)
	}
}
