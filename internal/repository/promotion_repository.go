package repository

import (
	"errors"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByCode(code string) (*models.Promotion, error)
	ListByStatus(status string) ([]models.Promotion, error)
	ListExpired(now time.Time) ([]models.Promotion, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) error
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	IncrementUsage(id uint, revenue models.Money) error
	MarkEnded(ids []uint) error
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取促销
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByCode 根据促销码获取促销
func (r *GormPromotionRepository) GetByCode(code string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.Where("code = ?", code).First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// ListByStatus 获取指定状态的促销列表
func (r *GormPromotionRepository) ListByStatus(status string) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.Where("status = ?", status).Order("id asc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// ListExpired 获取失效时间已过但状态尚未结束的促销
func (r *GormPromotionRepository) ListExpired(now time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	query := r.db.Where("ends_at IS NOT NULL AND ends_at < ?", now)
	query = query.Where("status IN ?", []string{
		constants.PromotionStatusActive,
		constants.PromotionStatusInactive,
		constants.PromotionStatusScheduled,
	})
	if err := query.Order("id asc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Create 创建促销
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Save(promotion).Error
}

// Delete 删除促销（硬删除，不可恢复）
func (r *GormPromotionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Promotion{}, id).Error
}

// List 获取促销列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	var promotions []models.Promotion
	query := r.db.Model(&models.Promotion{})

	if filter.ID != 0 {
		query = query.Where("id = ?", filter.ID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ApplicationType != "" {
		query = query.Where("application_type = ?", filter.ApplicationType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// IncrementUsage 累加使用次数与成交金额（订单侧调用）
func (r *GormPromotionRepository) IncrementUsage(id uint, revenue models.Money) error {
	return r.db.Model(&models.Promotion{}).Where("id = ?", id).Updates(map[string]interface{}{
		"usage_count": gorm.Expr("usage_count + ?", 1),
		"revenue":     gorm.Expr("revenue + ?", revenue.Decimal),
	}).Error
}

// MarkEnded 批量将促销置为已结束
func (r *GormPromotionRepository) MarkEnded(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Promotion{}).Where("id IN ?", ids).
		Update("status", constants.PromotionStatusEnded).Error
}
