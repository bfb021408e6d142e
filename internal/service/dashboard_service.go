package service

import (
	"time"

	"github.com/voltmart/voltmart-api/internal/repository"
)

// DashboardService 仪表盘服务
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// Overview 仪表盘总览
type Overview struct {
	OrdersTotal          int64            `json:"orders_total"`
	PaidOrders           int64            `json:"paid_orders"`
	CanceledOrders       int64            `json:"canceled_orders"`
	PendingPaymentOrders int64            `json:"pending_payment_orders"`
	RevenuePaid          float64          `json:"revenue_paid"`
	ActiveProducts       int64            `json:"active_products"`
	ActivePromotions     int64            `json:"active_promotions"`
	PromotionsByStatus   map[string]int64 `json:"promotions_by_status"`
}

// PromotionRanking 促销排行条目
type PromotionRanking struct {
	PromotionID uint    `json:"promotion_id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	UsageCount  int64   `json:"usage_count"`
	Revenue     float64 `json:"revenue"`
}

// GetOverview 获取指定天数窗口的总览
func (s *DashboardService) GetOverview(days int) (*Overview, error) {
	if days <= 0 {
		days = 30
	}
	endAt := time.Now()
	startAt := endAt.AddDate(0, 0, -days)

	row, err := s.repo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountPromotionsByStatus()
	if err != nil {
		return nil, err
	}
	return &Overview{
		OrdersTotal:          row.OrdersTotal,
		PaidOrders:           row.PaidOrders,
		CanceledOrders:       row.CanceledOrders,
		PendingPaymentOrders: row.PendingPaymentOrders,
		RevenuePaid:          row.RevenuePaid,
		ActiveProducts:       row.ActiveProducts,
		ActivePromotions:     row.ActivePromotions,
		PromotionsByStatus:   byStatus,
	}, nil
}

// GetTopPromotions 获取促销使用排行
func (s *DashboardService) GetTopPromotions(limit int) ([]PromotionRanking, error) {
	rows, err := s.repo.GetTopPromotions(limit)
	if err != nil {
		return nil, err
	}
	rankings := make([]PromotionRanking, 0, len(rows))
	for _, row := range rows {
		rankings = append(rankings, PromotionRanking{
			PromotionID: row.PromotionID,
			Name:        row.Name,
			Code:        row.Code,
			UsageCount:  row.UsageCount,
			Revenue:     row.Revenue,
		})
	}
	return rankings, nil
}
