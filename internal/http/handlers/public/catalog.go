package public

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/cache"
	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicProductView 公共商品响应结构
// 命中促销时携带促销标识与折后价。
type PublicProductView struct {
	models.Product
	PromotionID    *uint         `json:"promotion_id,omitempty"`
	PromotionType  string        `json:"promotion_type,omitempty"`
	PromotionPrice *models.Money `json:"promotion_price,omitempty"`
}

func (h *Handler) catalogCacheTTL() time.Duration {
	seconds := h.Config.Catalog.CacheTTLSeconds
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func buildProductViews(products []models.Product, resolved map[uint]service.ResolvedDiscount) []PublicProductView {
	views := make([]PublicProductView, 0, len(products))
	for _, product := range products {
		view := PublicProductView{Product: product}
		if discount, ok := resolved[product.ID]; ok && discount.Applies {
			promotionID := discount.PromotionID
			price := discount.FinalPrice
			view.PromotionID = &promotionID
			view.PromotionType = discount.Type
			view.PromotionPrice = &price
		}
		views = append(views, view)
	}
	return views
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	var cached []models.Category
	if hit, err := cache.GetJSON(c.Request.Context(), constants.CacheKeyCategories, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	if err := cache.SetJSON(c.Request.Context(), constants.CacheKeyCategories, categories, h.catalogCacheTTL()); err != nil {
		requestLogPublic(c).Warnw("catalog_cache_set_failed", "error", err)
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表（带促销标识）
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	brand := strings.TrimSpace(c.Query("brand"))
	search := strings.TrimSpace(c.Query("search"))

	cacheKey := ""
	cacheable := search == ""
	if cacheable {
		cacheKey = fmt.Sprintf("%s:%d:%s:%d:%d", constants.CacheKeyCatalog, categoryID, brand, page, pageSize)
		var cached response.PageResponse
		if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
			c.JSON(200, cached)
			return
		}
	}

	products, total, err := h.ProductService.ListPublic(uint(categoryID), brand, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	resolved, err := h.PromotionService.ResolveForProducts(products, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	views := buildProductViews(products, resolved)
	pagination := response.BuildPagination(page, pageSize, total)
	if cacheable {
		payload := response.PageResponse{
			StatusCode: response.CodeOK,
			Msg:        "success",
			Data:       views,
			Pagination: pagination,
		}
		if err := cache.SetJSON(c.Request.Context(), cacheKey, payload, h.catalogCacheTTL()); err != nil {
			requestLogPublic(c).Warnw("catalog_cache_set_failed", "error", err)
		}
	}
	response.SuccessWithPage(c, views, pagination)
}

// GetProduct 获取商品详情（带促销标识）
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}

	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	resolved, err := h.PromotionService.ResolveForProduct(product, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	view := PublicProductView{Product: *product}
	if resolved.Applies {
		promotionID := resolved.PromotionID
		price := resolved.FinalPrice
		view.PromotionID = &promotionID
		view.PromotionType = resolved.Type
		view.PromotionPrice = &price
	}
	response.Success(c, view)
}
