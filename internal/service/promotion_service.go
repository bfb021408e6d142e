package service

import (
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"
)

// PromotionService 店面促销解析服务
// 从活跃促销集合中为商品解析到手价。
type PromotionService struct {
	repo   repository.PromotionRepository
	engine *PromotionEngine
}

// NewPromotionService 创建店面促销服务
func NewPromotionService(repo repository.PromotionRepository, engine *PromotionEngine) *PromotionService {
	return &PromotionService{repo: repo, engine: engine}
}

// ResolveForProduct 解析单个商品的最优折扣
func (s *PromotionService) ResolveForProduct(product *models.Product, now time.Time) (ResolvedDiscount, error) {
	if product == nil {
		return ResolvedDiscount{}, ErrProductNotFound
	}
	promotions, err := s.repo.ListByStatus(constants.PromotionStatusActive)
	if err != nil {
		return ResolvedDiscount{}, err
	}
	return s.engine.ResolveBest(promotions, product, now, GateStatusAndWindow)
}

// ResolveForProducts 批量解析商品折扣（商品列表页用）
// 只加载一次活跃促销，结果按商品 ID 索引。
func (s *PromotionService) ResolveForProducts(products []models.Product, now time.Time) (map[uint]ResolvedDiscount, error) {
	promotions, err := s.repo.ListByStatus(constants.PromotionStatusActive)
	if err != nil {
		return nil, err
	}
	result := make(map[uint]ResolvedDiscount, len(products))
	for i := range products {
		resolved, err := s.engine.ResolveBest(promotions, &products[i], now, GateStatusAndWindow)
		if err != nil {
			return nil, err
		}
		result[products[i].ID] = resolved
	}
	return result, nil
}

// ResolveByCode 按促销码解析商品折扣（结算链路用）
// 促销不可用或不覆盖商品时 Applies=false。
func (s *PromotionService) ResolveByCode(code string, product *models.Product, now time.Time) (ResolvedDiscount, error) {
	if product == nil {
		return ResolvedDiscount{}, ErrProductNotFound
	}
	promotion, err := s.repo.GetByCode(code)
	if err != nil {
		return ResolvedDiscount{}, err
	}
	if promotion == nil {
		return ResolvedDiscount{}, ErrPromotionNotFound
	}
	return s.engine.Resolve(promotion, product, now, GateStatusAndWindow)
}
