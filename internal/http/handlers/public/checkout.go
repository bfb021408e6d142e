package public

import (
	"errors"
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutItemRequest 结算单项请求
type CheckoutItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	Email         string                `json:"email" binding:"required,email"`
	Currency      string                `json:"currency"`
	PromotionCode string                `json:"promotion_code"`
	Items         []CheckoutItemRequest `json:"items" binding:"required,min=1"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.CheckoutItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CheckoutItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	order, err := h.OrderService.Checkout(service.CheckoutInput{
		Email:         req.Email,
		Currency:      req.Currency,
		PromotionCode: req.PromotionCode,
		Items:         items,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	requestLogPublic(c).Infow("order_created", "order_no", order.OrderNo, "total", order.TotalAmount.String())
	response.Success(c, order)
}

// GetOrder 查询订单
func (h *Handler) GetOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, order)
}

// PreviewPromotionRequest 促销码试算请求
type PreviewPromotionRequest struct {
	Code      string `json:"code" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
}

// PreviewPromotion 促销码试算
// 不创建订单，仅返回该商品在促销下的到手价。
func (h *Handler) PreviewPromotion(c *gin.Context) {
	var req PreviewPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, err := h.ProductRepo.GetByID(req.ProductID)
	if err != nil {
		respondError(c, response.CodeInternal, "promotion preview failed", err)
		return
	}
	if product == nil || !product.IsActive {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}

	resolved, err := h.PromotionService.ResolveByCode(req.Code, product, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrPromotionNotFound) {
			respondError(c, response.CodeNotFound, "promotion not found", nil)
			return
		}
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, resolved)
}
