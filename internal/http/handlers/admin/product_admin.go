package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	CategoryID  uint     `json:"category_id" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   int      `json:"sort_order"`
}

func (r ProductRequest) toServiceInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:  r.CategoryID,
		Slug:        r.Slug,
		Name:        r.Name,
		Brand:       r.Brand,
		Description: r.Description,
		PriceAmount: models.NewMoneyFromFloat(r.Price),
		Stock:       r.Stock,
		Images:      r.Images,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

func respondProductError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrProductSlugTaken):
		respondError(c, response.CodeConflict, "product slug exists", nil)
	case errors.Is(err, service.ErrProductInvalid):
		respondError(c, response.CodeBadRequest, "invalid product", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)

	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   uint(categoryID),
		Brand:        strings.TrimSpace(c.Query("brand")),
		Search:       strings.TrimSpace(c.Query("search")),
		WithCategory: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Get(uint(productID))
	if err != nil {
		respondProductError(c, err, "product fetch failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Create(req.toServiceInput())
	if err != nil {
		respondProductError(c, err, "product create failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Update(uint(productID), req.toServiceInput())
	if err != nil {
		respondProductError(c, err, "product update failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.ProductService.Delete(uint(productID)); err != nil {
		respondProductError(c, err, "product delete failed")
		return
	}
	invalidateCatalogCache(c)
	response.Success(c, gin.H{
		"deleted": true,
	})
}
