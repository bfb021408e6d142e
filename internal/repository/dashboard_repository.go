package repository

import (
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetTopPromotions(limit int) ([]DashboardPromotionRankingRow, error)
	CountPromotionsByStatus() (map[string]int64, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal          int64
	PaidOrders           int64
	CanceledOrders       int64
	PendingPaymentOrders int64
	RevenuePaid          float64
	ActiveProducts       int64
	ActivePromotions     int64
}

// DashboardPromotionRankingRow 促销排行原始行
type DashboardPromotionRankingRow struct {
	PromotionID uint
	Name        string
	Code        string
	UsageCount  int64
	Revenue     float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func paidOrderStatuses() []string {
	return []string{
		constants.OrderStatusPaid,
		constants.OrderStatusCompleted,
	}
}

// GetOverview 统计时间窗内的订单与营收总览
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	var row DashboardOverviewRow

	base := r.db.Model(&models.Order{}).Where("created_at >= ? AND created_at < ?", startAt, endAt)
	if err := base.Session(&gorm.Session{}).Count(&row.OrdersTotal).Error; err != nil {
		return row, err
	}
	if err := base.Session(&gorm.Session{}).Where("status IN ?", paidOrderStatuses()).Count(&row.PaidOrders).Error; err != nil {
		return row, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", constants.OrderStatusCanceled).Count(&row.CanceledOrders).Error; err != nil {
		return row, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", constants.OrderStatusPendingPayment).Count(&row.PendingPaymentOrders).Error; err != nil {
		return row, err
	}
	if err := base.Session(&gorm.Session{}).Where("status IN ?", paidOrderStatuses()).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&row.RevenuePaid).Error; err != nil {
		return row, err
	}

	if err := r.db.Model(&models.Product{}).Where("is_active = ?", true).Count(&row.ActiveProducts).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Promotion{}).Where("status = ?", constants.PromotionStatusActive).Count(&row.ActivePromotions).Error; err != nil {
		return row, err
	}
	return row, nil
}

// GetTopPromotions 促销使用次数排行
func (r *GormDashboardRepository) GetTopPromotions(limit int) ([]DashboardPromotionRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []DashboardPromotionRankingRow
	err := r.db.Model(&models.Promotion{}).
		Select("id AS promotion_id, name, code, usage_count, revenue").
		Where("usage_count > 0").
		Order("usage_count DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountPromotionsByStatus 按状态统计促销数量
func (r *GormDashboardRepository) CountPromotionsByStatus() (map[string]int64, error) {
	type statusCount struct {
		Status string
		Total  int64
	}
	var rows []statusCount
	err := r.db.Model(&models.Promotion{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}
