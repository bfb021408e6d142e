package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/queue"
	"github.com/voltmart/voltmart-api/internal/repository"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductDiscountRequest 单品覆盖值请求
type ProductDiscountRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Value     float64 `json:"value" binding:"required"`
}

// PromotionRequest 创建/更新促销请求
type PromotionRequest struct {
	Name             string                   `json:"name" binding:"required"`
	Code             string                   `json:"code" binding:"required"`
	Type             string                   `json:"type" binding:"required"`
	Value            float64                  `json:"value" binding:"required"`
	ApplicationType  string                   `json:"application_type" binding:"required"`
	Products         []uint                   `json:"products"`
	Categories       []uint                   `json:"categories"`
	ProductDiscounts []ProductDiscountRequest `json:"product_discounts"`
	Status           string                   `json:"status"`
	StartsAt         string                   `json:"starts_at"`
	EndsAt           string                   `json:"ends_at"`
}

func (r PromotionRequest) toServiceInput() (service.PromotionInput, error) {
	startsAt, err := parseTimeNullable(r.StartsAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	endsAt, err := parseTimeNullable(r.EndsAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	overrides := make([]models.ProductDiscount, 0, len(r.ProductDiscounts))
	for _, item := range r.ProductDiscounts {
		overrides = append(overrides, models.ProductDiscount{
			ProductID: item.ProductID,
			Value:     models.NewMoneyFromFloat(item.Value),
		})
	}
	return service.PromotionInput{
		Name:             r.Name,
		Code:             r.Code,
		Type:             r.Type,
		Value:            models.NewMoneyFromFloat(r.Value),
		ApplicationType:  r.ApplicationType,
		ProductIDs:       r.Products,
		CategoryIDs:      r.Categories,
		ProductDiscounts: overrides,
		Status:           r.Status,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
	}, nil
}

func respondPromotionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "promotion not found", nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrPromotionCodeExists):
		respondError(c, response.CodeConflict, "promotion code exists", nil)
	case errors.Is(err, service.ErrPromotionValueInvalid):
		respondError(c, response.CodeBadRequest, "invalid discount value", nil)
	case errors.Is(err, service.ErrPromotionOverridePrice):
		respondError(c, response.CodeBadRequest, "override exceeds product price", nil)
	case errors.Is(err, service.ErrPromotionScopeInvalid):
		respondError(c, response.CodeBadRequest, "invalid promotion scope", nil)
	case errors.Is(err, service.ErrPromotionStatusInvalid):
		respondError(c, response.CodeBadRequest, "invalid status transition", nil)
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, "invalid promotion", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// CreatePromotion 创建促销
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	promotion, warnings, err := h.PromotionAdminService.Create(input)
	if err != nil {
		respondPromotionError(c, err, "promotion create failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, gin.H{
		"promotion": promotion,
		"warnings":  warnings,
	})
}

// UpdatePromotion 更新促销
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	promotion, warnings, err := h.PromotionAdminService.Update(uint(promotionID), input)
	if err != nil {
		respondPromotionError(c, err, "promotion update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, gin.H{
		"promotion": promotion,
		"warnings":  warnings,
	})
}

// GetAdminPromotion 获取促销详情
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.Get(uint(promotionID))
	if err != nil {
		respondPromotionError(c, err, "promotion fetch failed")
		return
	}
	response.Success(c, promotion)
}

// GetAdminPromotions 获取促销列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var id uint
	if rawID := strings.TrimSpace(c.Query("id")); rawID != "" {
		parsed, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		id = uint(parsed)
	}

	promotions, total, err := h.PromotionAdminService.List(repository.PromotionListFilter{
		Page:            page,
		PageSize:        pageSize,
		ID:              id,
		Code:            strings.TrimSpace(c.Query("code")),
		Status:          strings.TrimSpace(c.Query("status")),
		ApplicationType: strings.TrimSpace(c.Query("application_type")),
		Search:          strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "promotion fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, promotions, pagination)
}

// DeletePromotion 删除促销
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.PromotionAdminService.Delete(uint(promotionID)); err != nil {
		respondPromotionError(c, err, "promotion delete failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// PromotionStatusRequest 促销状态迁移请求
type PromotionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetPromotionStatus 变更促销状态
func (h *Handler) SetPromotionStatus(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req PromotionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.SetStatus(uint(promotionID), strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		respondPromotionError(c, err, "promotion status update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, promotion)
}

// ScopeProductRequest 作用域商品请求
type ScopeProductRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// AddPromotionProduct 向作用域追加商品
func (h *Handler) AddPromotionProduct(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req ScopeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.AddScopeProduct(uint(promotionID), req.ProductID)
	if err != nil {
		respondPromotionError(c, err, "promotion scope update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, promotion)
}

// RemovePromotionProduct 将商品移出作用域
func (h *Handler) RemovePromotionProduct(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.RemoveScopeProduct(uint(promotionID), uint(productID))
	if err != nil {
		respondPromotionError(c, err, "promotion scope update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, promotion)
}

// SetPromotionOverride 设置单品覆盖值
func (h *Handler) SetPromotionOverride(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req ProductDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.SetOverride(uint(promotionID), req.ProductID, models.NewMoneyFromFloat(req.Value))
	if err != nil {
		respondPromotionError(c, err, "promotion override update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, promotion)
}

// SweepPromotions 立即触发一次促销到期扫描
// 队列启用时投递异步任务，否则同步执行。
func (h *Handler) SweepPromotions(c *gin.Context) {
	if h.QueueClient.Enabled() {
		payload := queue.PromotionEndSweepPayload{RequestedAt: time.Now().Unix()}
		if err := h.QueueClient.EnqueuePromotionEndSweep(payload); err != nil {
			respondError(c, response.CodeInternal, "promotion sweep enqueue failed", err)
			return
		}
		response.Success(c, gin.H{
			"enqueued": true,
		})
		return
	}

	ended, err := h.PromotionAdminService.SweepEnded(time.Now())
	if err != nil {
		respondPromotionError(c, err, "promotion sweep failed")
		return
	}
	response.Success(c, gin.H{
		"enqueued": false,
		"ended":    ended,
	})
}

// RemovePromotionOverride 删除单品覆盖值
func (h *Handler) RemovePromotionOverride(c *gin.Context) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	promotion, err := h.PromotionAdminService.RemoveOverride(uint(promotionID), uint(productID))
	if err != nil {
		respondPromotionError(c, err, "promotion override update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, promotion)
}
