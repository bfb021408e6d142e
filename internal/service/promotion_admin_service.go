package service

import (
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/logger"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"
)

// WarnScopeMembershipMismatch 覆盖值指向作用域外商品时的提示
const WarnScopeMembershipMismatch = "scope_membership_mismatch"

// PromotionAdminService 促销管理服务
type PromotionAdminService struct {
	repo         repository.PromotionRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	engine       *PromotionEngine
}

// NewPromotionAdminService 创建促销管理服务
func NewPromotionAdminService(
	repo repository.PromotionRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	engine *PromotionEngine,
) *PromotionAdminService {
	return &PromotionAdminService{
		repo:         repo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		engine:       engine,
	}
}

// PromotionInput 创建/更新促销输入
type PromotionInput struct {
	Name             string
	Code             string
	Type             string
	Value            models.Money
	ApplicationType  string
	ProductIDs       []uint
	CategoryIDs      []uint
	ProductDiscounts []models.ProductDiscount
	Status           string
	StartsAt         *time.Time
	EndsAt           *time.Time
}

func (s *PromotionAdminService) normalizeInput(input *PromotionInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	input.ApplicationType = strings.ToLower(strings.TrimSpace(input.ApplicationType))
	if input.Name == "" || input.Code == "" {
		return ErrPromotionInvalid
	}
	if input.Type != constants.PromotionTypePercentage && input.Type != constants.PromotionTypeFixed {
		return ErrPromotionInvalid
	}
	if err := ValidateDiscountValue(input.Type, input.Value); err != nil {
		return err
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return ErrPromotionInvalid
	}

	switch input.ApplicationType {
	case constants.ApplicationTypeStorewide:
		input.ProductIDs = nil
		input.CategoryIDs = nil
		input.ProductDiscounts = nil
	case constants.ApplicationTypeSpecificProducts:
		if len(input.ProductIDs) == 0 {
			return ErrPromotionScopeInvalid
		}
		input.CategoryIDs = nil
	case constants.ApplicationTypeCategories:
		if len(input.CategoryIDs) == 0 {
			return ErrPromotionScopeInvalid
		}
		input.ProductIDs = nil
		input.ProductDiscounts = nil
	default:
		return ErrPromotionScopeInvalid
	}
	return nil
}

// validateScopeRefs 校验作用域引用的商品/分类确实存在
// 引用不存在的 id 不阻断保存，仅产生提示供后台展示。
func (s *PromotionAdminService) validateScopeRefs(input PromotionInput) ([]string, error) {
	var warnings []string
	if len(input.ProductIDs) > 0 {
		products, err := s.productRepo.GetByIDs(input.ProductIDs)
		if err != nil {
			return nil, err
		}
		found := make(map[uint]struct{}, len(products))
		for _, product := range products {
			found[product.ID] = struct{}{}
		}
		for _, productID := range dedupeIDs(input.ProductIDs) {
			if _, ok := found[productID]; !ok {
				warnings = append(warnings, WarnScopeMembershipMismatch)
				logger.Warnw("promotion_scope_ref_missing",
					"product_id", productID,
					"code", input.Code,
				)
			}
		}
	}
	if len(input.CategoryIDs) > 0 {
		categories, err := s.categoryRepo.GetByIDs(input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		found := make(map[uint]struct{}, len(categories))
		for _, category := range categories {
			found[category.ID] = struct{}{}
		}
		for _, categoryID := range dedupeIDs(input.CategoryIDs) {
			if _, ok := found[categoryID]; !ok {
				warnings = append(warnings, WarnScopeMembershipMismatch)
				logger.Warnw("promotion_scope_ref_missing",
					"category_id", categoryID,
					"code", input.Code,
				)
			}
		}
	}
	return warnings, nil
}

// validateOverrides 校验覆盖值：商品不得重复、必须在作用域内、
// 取值范围合法、fixed 不得超过商品价格。
func (s *PromotionAdminService) validateOverrides(input PromotionInput) error {
	if len(input.ProductDiscounts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(input.ProductDiscounts))
	seen := make(map[uint]struct{}, len(input.ProductDiscounts))
	for _, override := range input.ProductDiscounts {
		if _, dup := seen[override.ProductID]; dup {
			return ErrPromotionScopeInvalid
		}
		seen[override.ProductID] = struct{}{}
		if err := ValidateDiscountValue(input.Type, override.Value); err != nil {
			return err
		}
		ids = append(ids, override.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return err
	}
	priceByID := make(map[uint]models.Money, len(products))
	for _, product := range products {
		priceByID[product.ID] = product.PriceAmount
	}

	inScope := models.UintArray(input.ProductIDs)
	for _, override := range input.ProductDiscounts {
		if input.ApplicationType == constants.ApplicationTypeSpecificProducts && !inScope.Contains(override.ProductID) {
			return ErrPromotionScopeInvalid
		}
		price, ok := priceByID[override.ProductID]
		if !ok {
			return ErrProductNotFound
		}
		if input.Type == constants.PromotionTypeFixed && override.Value.Decimal.GreaterThan(price.Decimal) {
			return ErrPromotionOverridePrice
		}
	}
	return nil
}

// Create 创建促销
// 返回的提示不阻断创建，供后台界面展示。
func (s *PromotionAdminService) Create(input PromotionInput) (*models.Promotion, []string, error) {
	if err := s.normalizeInput(&input); err != nil {
		return nil, nil, err
	}
	status := input.Status
	if status == "" {
		status = constants.PromotionStatusDraft
	}
	if !ValidPromotionStatus(status) {
		return nil, nil, ErrPromotionStatusInvalid
	}

	existing, err := s.repo.GetByCode(input.Code)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrPromotionCodeExists
	}

	warnings, err := s.validateScopeRefs(input)
	if err != nil {
		return nil, nil, err
	}
	if err := s.validateOverrides(input); err != nil {
		return nil, nil, err
	}

	promotion := &models.Promotion{
		Name:             input.Name,
		Code:             input.Code,
		Type:             input.Type,
		Value:            input.Value,
		ApplicationType:  input.ApplicationType,
		ProductIDs:       input.ProductIDs,
		CategoryIDs:      input.CategoryIDs,
		ProductDiscounts: input.ProductDiscounts,
		Status:           status,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
	}
	if err := s.repo.Create(promotion); err != nil {
		return nil, nil, err
	}
	return promotion, warnings, nil
}

// Update 更新促销
// 状态不在此处变更，使用 SetStatus 走状态机。
func (s *PromotionAdminService) Update(id uint, input PromotionInput) (*models.Promotion, []string, error) {
	if id == 0 {
		return nil, nil, ErrPromotionInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, ErrPromotionNotFound
	}
	if err := s.normalizeInput(&input); err != nil {
		return nil, nil, err
	}

	if input.Code != existing.Code {
		conflict, err := s.repo.GetByCode(input.Code)
		if err != nil {
			return nil, nil, err
		}
		if conflict != nil && conflict.ID != id {
			return nil, nil, ErrPromotionCodeExists
		}
	}

	warnings, err := s.validateScopeRefs(input)
	if err != nil {
		return nil, nil, err
	}

	// 作用域收缩时同步清理失效的覆盖值
	input.ProductDiscounts = pruneOverrides(input, existing)

	if err := s.validateOverrides(input); err != nil {
		return nil, nil, err
	}

	existing.Name = input.Name
	existing.Code = input.Code
	existing.Type = input.Type
	existing.Value = input.Value
	existing.ApplicationType = input.ApplicationType
	existing.ProductIDs = input.ProductIDs
	existing.CategoryIDs = input.CategoryIDs
	existing.ProductDiscounts = input.ProductDiscounts
	existing.StartsAt = input.StartsAt
	existing.EndsAt = input.EndsAt

	if err := s.repo.Update(existing); err != nil {
		return nil, nil, err
	}
	return existing, warnings, nil
}

// pruneOverrides 丢弃超出指定商品作用域的覆盖值
func pruneOverrides(input PromotionInput, existing *models.Promotion) []models.ProductDiscount {
	if input.ApplicationType != constants.ApplicationTypeSpecificProducts {
		return nil
	}
	overrides := input.ProductDiscounts
	if overrides == nil {
		overrides = existing.ProductDiscounts
	}
	inScope := models.UintArray(input.ProductIDs)
	kept := make([]models.ProductDiscount, 0, len(overrides))
	for _, override := range overrides {
		if inScope.Contains(override.ProductID) {
			kept = append(kept, override)
		}
	}
	return kept
}

// AddScopeProduct 向指定商品作用域追加商品
// 同时按促销类型播种默认覆盖值。
func (s *PromotionAdminService) AddScopeProduct(id, productID uint) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	if promotion.ApplicationType != constants.ApplicationTypeSpecificProducts {
		return nil, ErrPromotionScopeInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if promotion.ProductIDs.Contains(productID) {
		return promotion, nil
	}

	promotion.ProductIDs = append(promotion.ProductIDs, productID)
	if _, ok := promotion.ProductDiscounts.Lookup(productID); !ok {
		promotion.ProductDiscounts = append(promotion.ProductDiscounts, models.ProductDiscount{
			ProductID: productID,
			Value:     DefaultOverrideValue(promotion.Type),
		})
	}
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// RemoveScopeProduct 将商品移出作用域并删除其覆盖值
func (s *PromotionAdminService) RemoveScopeProduct(id, productID uint) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	if promotion.ApplicationType != constants.ApplicationTypeSpecificProducts {
		return nil, ErrPromotionScopeInvalid
	}

	ids := make(models.UintArray, 0, len(promotion.ProductIDs))
	for _, pid := range promotion.ProductIDs {
		if pid != productID {
			ids = append(ids, pid)
		}
	}
	overrides := make(models.ProductDiscountList, 0, len(promotion.ProductDiscounts))
	for _, override := range promotion.ProductDiscounts {
		if override.ProductID != productID {
			overrides = append(overrides, override)
		}
	}
	promotion.ProductIDs = ids
	promotion.ProductDiscounts = overrides

	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// SetOverride 设置/更新单品覆盖值
func (s *PromotionAdminService) SetOverride(id, productID uint, value models.Money) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	if promotion.ApplicationType == constants.ApplicationTypeSpecificProducts && !promotion.ProductIDs.Contains(productID) {
		return nil, ErrPromotionScopeInvalid
	}
	if err := ValidateDiscountValue(promotion.Type, value); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if promotion.Type == constants.PromotionTypeFixed && value.Decimal.GreaterThan(product.PriceAmount.Decimal) {
		return nil, ErrPromotionOverridePrice
	}

	updated := false
	for i := range promotion.ProductDiscounts {
		if promotion.ProductDiscounts[i].ProductID == productID {
			promotion.ProductDiscounts[i].Value = value
			updated = true
			break
		}
	}
	if !updated {
		promotion.ProductDiscounts = append(promotion.ProductDiscounts, models.ProductDiscount{
			ProductID: productID,
			Value:     value,
		})
	}
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// RemoveOverride 删除单品覆盖值，回落到促销默认值
func (s *PromotionAdminService) RemoveOverride(id, productID uint) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	overrides := make(models.ProductDiscountList, 0, len(promotion.ProductDiscounts))
	for _, override := range promotion.ProductDiscounts {
		if override.ProductID != productID {
			overrides = append(overrides, override)
		}
	}
	promotion.ProductDiscounts = overrides
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// SetStatus 按状态机迁移促销状态
func (s *PromotionAdminService) SetStatus(id uint, status string) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	if !ValidPromotionStatus(status) {
		return nil, ErrPromotionStatusInvalid
	}
	if status == promotion.Status {
		return promotion, nil
	}
	if !CanTransition(promotion.Status, status) {
		return nil, ErrPromotionStatusInvalid
	}
	promotion.Status = status
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// Get 获取促销详情
func (s *PromotionAdminService) Get(id uint) (*models.Promotion, error) {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// List 获取促销列表
func (s *PromotionAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.repo.List(filter)
}

// Delete 删除促销（物理删除）
func (s *PromotionAdminService) Delete(id uint) error {
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if promotion == nil {
		return ErrPromotionNotFound
	}
	return s.repo.Delete(id)
}

// SweepEnded 将已过结束时间的促销批量置为 ended
// 由后台任务周期触发。
func (s *PromotionAdminService) SweepEnded(now time.Time) (int, error) {
	expired, err := s.repo.ListExpired(now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}
	ids := make([]uint, 0, len(expired))
	for _, promotion := range expired {
		ids = append(ids, promotion.ID)
	}
	if err := s.repo.MarkEnded(ids); err != nil {
		return 0, err
	}
	logger.Infow("promotion_sweep_done", "ended", len(ids))
	return len(ids), nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
